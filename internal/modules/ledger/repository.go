// Package ledger provides the repository for the marketplace transaction
// audit trail stored in ledger.db. Transactions are procurement purchases
// (farmer to government) and retail sales (government to customer); the
// pricing engine reads completed rows through the domain.TransactionLedger
// interface this repository implements.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/database"
	"github.com/agrimandi/pricer/internal/domain"
)

// Repository handles transaction persistence in ledger.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction ledger repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// Create inserts a new pending transaction and returns it with its
// generated ID and creation time populated.
func (r *Repository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.CropType == "" || tx.District == "" {
		return nil, fmt.Errorf("crop type and district are required")
	}
	if tx.Type != domain.TxFarmerToGovt && tx.Type != domain.TxGovtToCustomer {
		return nil, fmt.Errorf("invalid transaction type: %s", tx.Type)
	}
	if tx.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if tx.PricePerUnit < 0 {
		return nil, fmt.Errorf("price per unit must not be negative")
	}

	tx.ID = uuid.New().String()
	tx.Status = domain.TxPending
	tx.CreatedAt = time.Now()

	query := `
		INSERT INTO transactions (
			id, crop_type, district, tx_type, status, quantity, price_per_unit, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		tx.ID,
		string(tx.CropType),
		tx.District,
		string(tx.Type),
		string(tx.Status),
		tx.Quantity,
		tx.PricePerUnit,
		tx.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	r.log.Info().
		Str("id", tx.ID).
		Str("crop", string(tx.CropType)).
		Str("district", tx.District).
		Str("type", string(tx.Type)).
		Msg("Transaction created")

	return tx, nil
}

// Complete marks a pending transaction as completed and returns the
// updated row. Update and re-read run in one transaction so the returned
// row reflects exactly what was committed. Completed rows are what the
// pricing engine's queries see.
func (r *Repository) Complete(id string) (*domain.Transaction, error) {
	var completed *domain.Transaction

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`UPDATE transactions SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
			string(domain.TxCompleted), time.Now().Unix(), id, string(domain.TxPending),
		)
		if err != nil {
			return fmt.Errorf("failed to complete transaction %s: %w", id, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("transaction %s not found or not pending", id)
		}

		row := tx.QueryRow(
			`SELECT id, crop_type, district, tx_type, status, quantity, price_per_unit, created_at, completed_at
			 FROM transactions WHERE id = ?`, id,
		)
		completed, err = scanTransaction(row)
		return err
	})
	if err != nil {
		return nil, err
	}

	return completed, nil
}

// GetByID fetches a single transaction.
func (r *Repository) GetByID(id string) (*domain.Transaction, error) {
	row := r.db.QueryRow(
		`SELECT id, crop_type, district, tx_type, status, quantity, price_per_unit, created_at, completed_at
		 FROM transactions WHERE id = ?`, id,
	)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}

	return tx, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	CropType domain.CropType
	District string
	Type     domain.TransactionType
	Limit    int
}

// List returns transactions matching the filter, newest first.
func (r *Repository) List(filter ListFilter) ([]*domain.Transaction, error) {
	query := `SELECT id, crop_type, district, tx_type, status, quantity, price_per_unit, created_at, completed_at
		FROM transactions WHERE 1=1`
	args := []interface{}{}

	if filter.CropType != "" {
		query += " AND crop_type = ?"
		args = append(args, string(filter.CropType))
	}
	if filter.District != "" {
		query += " AND district = ?"
		args = append(args, filter.District)
	}
	if filter.Type != "" {
		query += " AND tx_type = ?"
		args = append(args, string(filter.Type))
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// CompletedPurchases implements domain.TransactionLedger. It returns
// completed FARMER_TO_GOVT price points for a crop and district since the
// given time, newest first, capped at limit rows.
func (r *Repository) CompletedPurchases(cropType domain.CropType, district string, since time.Time, limit int) ([]domain.PricePoint, error) {
	rows, err := r.db.Query(
		`SELECT price_per_unit, created_at FROM transactions
		 WHERE crop_type = ? AND district = ? AND tx_type = ? AND status = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT ?`,
		string(cropType), district, string(domain.TxFarmerToGovt), string(domain.TxCompleted),
		since.Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed purchases: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var price float64
		var createdAt int64
		if err := rows.Scan(&price, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, domain.PricePoint{
			PricePerUnit: price,
			Timestamp:    time.Unix(createdAt, 0),
		})
	}

	return points, rows.Err()
}

// CountCompletedSales implements domain.TransactionLedger. It counts
// completed GOVT_TO_CUSTOMER transactions for a crop type since the given
// time, with no district filter.
func (r *Repository) CountCompletedSales(cropType domain.CropType, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM transactions
		 WHERE crop_type = ? AND tx_type = ? AND status = ? AND created_at >= ?`,
		string(cropType), string(domain.TxGovtToCustomer), string(domain.TxCompleted), since.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sales: %w", err)
	}

	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var cropType, txType, status string
	var createdAt int64
	var completedAt sql.NullInt64

	err := s.Scan(&tx.ID, &cropType, &tx.District, &txType, &status,
		&tx.Quantity, &tx.PricePerUnit, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}

	tx.CropType = domain.CropType(cropType)
	tx.Type = domain.TransactionType(txType)
	tx.Status = domain.TransactionStatus(status)
	tx.CreatedAt = time.Unix(createdAt, 0)
	if completedAt.Valid {
		completed := time.Unix(completedAt.Int64, 0)
		tx.CompletedAt = &completed
	}

	return &tx, nil
}
