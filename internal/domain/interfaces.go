package domain

import "time"

// TransactionLedger is the query contract the pricing engine consumes.
// Implementations own persistence; the engine only reads.
type TransactionLedger interface {
	// CompletedPurchases returns completed FARMER_TO_GOVT transactions for
	// a crop type and district since the given time, newest first, capped
	// at limit rows.
	CompletedPurchases(cropType CropType, district string, since time.Time, limit int) ([]PricePoint, error)

	// CountCompletedSales returns the number of completed GOVT_TO_CUSTOMER
	// transactions for a crop type since the given time, across all
	// districts.
	CountCompletedSales(cropType CropType, since time.Time) (int, error)
}

// MarketDataSource supplies an optional current market price snapshot.
// A nil snapshot means no data was available.
type MarketDataSource interface {
	GetSnapshot(cropType CropType, district string) (*MarketSnapshot, error)
}

// WeatherDataSource supplies an optional weather snapshot for coordinates.
// A nil snapshot means no data was available.
type WeatherDataSource interface {
	GetSnapshot(latitude, longitude float64) (*WeatherSnapshot, error)
}
