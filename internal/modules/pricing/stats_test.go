package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrimandi/pricer/internal/domain"
)

func pricePoints(prices ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{PricePerUnit: p}
	}
	return points
}

func TestComputeHistoricalStats_Empty(t *testing.T) {
	stats := computeHistoricalStats(nil)

	assert.Zero(t, stats.DataPoints)
	assert.Zero(t, stats.AveragePrice)
	assert.Zero(t, stats.Volatility)
	assert.Equal(t, domain.TrendStable, stats.Trend)
}

func TestComputeHistoricalStats_Aggregates(t *testing.T) {
	stats := computeHistoricalStats(pricePoints(10, 20, 30))

	assert.Equal(t, 3, stats.DataPoints)
	assert.InDelta(t, 20.0, stats.AveragePrice, 1e-9)
	assert.Equal(t, 10.0, stats.PriceRange.Min)
	assert.Equal(t, 30.0, stats.PriceRange.Max)

	// Population standard deviation, not sample: sqrt(200/3)
	assert.InDelta(t, math.Sqrt(200.0/3.0), stats.Volatility, 1e-9)
}

func TestComputeHistoricalStats_TrendIncreasing(t *testing.T) {
	// Newest first: recent half mean 22, older half mean 20 — a 10% rise.
	stats := computeHistoricalStats(pricePoints(22, 22, 20, 20))
	assert.Equal(t, domain.TrendIncreasing, stats.Trend)
}

func TestComputeHistoricalStats_TrendDecreasing(t *testing.T) {
	// Recent half mean 18 is 10% below the older half mean 20.
	stats := computeHistoricalStats(pricePoints(18, 18, 20, 20))
	assert.Equal(t, domain.TrendDecreasing, stats.Trend)
}

func TestComputeHistoricalStats_TrendStableWithinBand(t *testing.T) {
	// A 4% move either way stays inside the ±5% stability band.
	assert.Equal(t, domain.TrendStable,
		computeHistoricalStats(pricePoints(20.8, 20.8, 20, 20)).Trend)
	assert.Equal(t, domain.TrendStable,
		computeHistoricalStats(pricePoints(19.2, 19.2, 20, 20)).Trend)
}

func TestComputeHistoricalStats_FlatSeriesIsStable(t *testing.T) {
	stats := computeHistoricalStats(pricePoints(20, 20, 20, 20, 20))

	assert.Equal(t, domain.TrendStable, stats.Trend)
	assert.Zero(t, stats.Volatility)
}

func TestComputeHistoricalStats_SinglePointStaysStable(t *testing.T) {
	stats := computeHistoricalStats(pricePoints(42))

	assert.Equal(t, 1, stats.DataPoints)
	assert.Equal(t, domain.TrendStable, stats.Trend)
	assert.Equal(t, 42.0, stats.PriceRange.Min)
	assert.Equal(t, 42.0, stats.PriceRange.Max)
}

func TestComputeHistoricalStats_OddCountSplit(t *testing.T) {
	// Five points: newer half is the first two, older half the last three.
	stats := computeHistoricalStats(pricePoints(30, 30, 20, 20, 20))
	assert.Equal(t, domain.TrendIncreasing, stats.Trend)
}
