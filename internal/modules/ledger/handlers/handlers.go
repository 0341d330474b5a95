// Package handlers provides HTTP handlers for ledger transaction operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/domain"
	"github.com/agrimandi/pricer/internal/modules/ledger"
)

// Handler handles transaction HTTP requests
type Handler struct {
	repo *ledger.Repository
	log  zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(repo *ledger.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "ledger").Logger(),
	}
}

// CreateRequest represents a request to record a transaction
type CreateRequest struct {
	CropType     string  `json:"crop_type"`
	District     string  `json:"district"`
	Type         string  `json:"tx_type"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// HandleCreate handles POST /api/transactions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.repo.Create(&domain.Transaction{
		CropType:     domain.CropType(req.CropType),
		District:     req.District,
		Type:         domain.TransactionType(req.Type),
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to create transaction")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": tx,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleComplete handles POST /api/transactions/{id}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "transaction id is required", http.StatusBadRequest)
		return
	}

	tx, err := h.repo.Complete(id)
	if err != nil {
		h.log.Warn().Err(err).Str("id", id).Msg("Failed to complete transaction")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": tx,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleList handles GET /api/transactions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{
		CropType: domain.CropType(r.URL.Query().Get("crop")),
		District: r.URL.Query().Get("district"),
		Type:     domain.TransactionType(r.URL.Query().Get("type")),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	txs, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": txs,
		"metadata": map[string]interface{}{
			"count":     len(txs),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
