// Package domain contains the pure domain model for the agri marketplace
// pricing service. No infrastructure dependencies are allowed here.
package domain

import "time"

// CropType identifies a crop traded on the marketplace.
type CropType string

// Known crop types. Anything else is accepted but priced with the
// fallback default base price.
const (
	CropRice      CropType = "RICE"
	CropWheat     CropType = "WHEAT"
	CropCorn      CropType = "CORN"
	CropTomato    CropType = "TOMATO"
	CropPotato    CropType = "POTATO"
	CropOnion     CropType = "ONION"
	CropSugarcane CropType = "SUGARCANE"
	CropCotton    CropType = "COTTON"
	CropSoybean   CropType = "SOYBEAN"
	CropGroundnut CropType = "GROUNDNUT"
	CropSunflower CropType = "SUNFLOWER"
	CropMillet    CropType = "MILLET"
	CropBarley    CropType = "BARLEY"
)

// QualityGrade is an officer-assigned grade for a crop lot.
type QualityGrade string

const (
	GradeAPlus QualityGrade = "A+"
	GradeA     QualityGrade = "A"
	GradeBPlus QualityGrade = "B+"
	GradeB     QualityGrade = "B"
	GradeC     QualityGrade = "C"
)

// TransactionType distinguishes procurement purchases from retail sales.
type TransactionType string

const (
	// TxFarmerToGovt is a procurement purchase from a farmer.
	TxFarmerToGovt TransactionType = "FARMER_TO_GOVT"
	// TxGovtToCustomer is a retail sale to a customer.
	TxGovtToCustomer TransactionType = "GOVT_TO_CUSTOMER"
)

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxCompleted TransactionStatus = "COMPLETED"
)

// Transaction is a single marketplace transaction in the ledger.
type Transaction struct {
	ID           string            `json:"id"`
	CropType     CropType          `json:"crop_type"`
	District     string            `json:"district"`
	Type         TransactionType   `json:"tx_type"`
	Status       TransactionStatus `json:"status"`
	Quantity     float64           `json:"quantity"`
	PricePerUnit float64           `json:"price_per_unit"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// PricePoint is a single observed per-unit price with its timestamp,
// as returned by ledger queries (newest first).
type PricePoint struct {
	PricePerUnit float64   `json:"price_per_unit"`
	Timestamp    time.Time `json:"timestamp"`
}

// CropPriceQuery identifies the crop lot a price suggestion is requested for.
type CropPriceQuery struct {
	CropType     CropType     `json:"crop_type"`
	District     string       `json:"district"`
	QualityGrade QualityGrade `json:"quality_grade,omitempty"`
}

// MarketSnapshot is an optional current market price observation.
// A nil CurrentPrice means no market data was available.
type MarketSnapshot struct {
	CurrentPrice *float64 `json:"current_price,omitempty"`
}

// WeatherSnapshot is an optional weather observation for a region.
// Unset fields are treated as neutral defaults by the pricing engine.
type WeatherSnapshot struct {
	Temperature *float64 `json:"temperature,omitempty"` // °C
	Humidity    *float64 `json:"humidity,omitempty"`    // %
	Rainfall    *float64 `json:"rainfall,omitempty"`    // mm
}

// Trend classifies the direction of recent prices relative to older ones.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// PriceRange is the min/max of an observed price set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// HistoricalStats are aggregates over recent completed procurement
// transactions for one crop type and district.
type HistoricalStats struct {
	AveragePrice float64    `json:"average_price"`
	PriceRange   PriceRange `json:"price_range"`
	Trend        Trend      `json:"trend"`
	Volatility   float64    `json:"volatility"` // population standard deviation
	DataPoints   int        `json:"data_points"`
}

// PriceFactors is the unitless multiplier breakdown behind a suggestion.
type PriceFactors struct {
	Market      float64 `json:"market"`
	Weather     float64 `json:"weather"`
	Quality     float64 `json:"quality"`
	Demand      float64 `json:"demand"`
	Seasonality float64 `json:"seasonality"`
}

// PricePrediction is the engine output: a suggested per-unit price with
// its factor breakdown, confidence score and human-readable rationale.
type PricePrediction struct {
	SuggestedPrice  float64      `json:"suggested_price"`
	BasePrice       float64      `json:"base_price"`
	Factors         PriceFactors `json:"factors"`
	ConfidenceScore float64      `json:"confidence_score"`
	Reasoning       string       `json:"reasoning"`
	Timestamp       time.Time    `json:"timestamp"`
	ValidUntil      time.Time    `json:"valid_until"`
}
