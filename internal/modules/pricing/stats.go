package pricing

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/agrimandi/pricer/internal/domain"
)

// Trend thresholds: the newer half's mean must move more than 5% against
// the older half's mean before the trend leaves "stable".
const (
	trendIncreasingRatio = 1.05
	trendDecreasingRatio = 0.95
)

// computeHistoricalStats aggregates a newest-first list of observed prices
// into the statistics the factor model consumes. An empty list yields the
// zero-data fallback (average 0, stable trend, zero volatility).
func computeHistoricalStats(points []domain.PricePoint) domain.HistoricalStats {
	stats := domain.HistoricalStats{Trend: domain.TrendStable}

	if len(points) == 0 {
		return stats
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.PricePerUnit
	}

	stats.DataPoints = len(prices)
	stats.AveragePrice = stat.Mean(prices, nil)
	stats.PriceRange = domain.PriceRange{
		Min: floats.Min(prices),
		Max: floats.Max(prices),
	}
	stats.Volatility = stat.PopStdDev(prices, nil)

	// Trend: compare the newer half against the older half. The list is
	// newest first, so the first half is the recent one. With an odd
	// count the older half gets the extra point.
	if len(prices) >= 2 {
		half := len(prices) / 2
		newerAvg := stat.Mean(prices[:half], nil)
		olderAvg := stat.Mean(prices[half:], nil)

		switch {
		case newerAvg > olderAvg*trendIncreasingRatio:
			stats.Trend = domain.TrendIncreasing
		case newerAvg < olderAvg*trendDecreasingRatio:
			stats.Trend = domain.TrendDecreasing
		}
	}

	return stats
}
