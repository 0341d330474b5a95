// Package pricing implements the price suggestion engine for the agri
// marketplace. Given a crop's attributes plus externally supplied market,
// weather and historical transaction data, it computes a suggested
// per-unit price, a confidence score and a human-readable rationale.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/domain"
)

// ErrPredictionFailed is the single opaque failure surfaced to callers.
// Sub-lookup failures (ledger, market, weather) never propagate; they
// degrade to neutral defaults instead.
var ErrPredictionFailed = errors.New("failed to predict price")

// Historical and demand query windows.
const (
	historicalWindow = 90 * 24 * time.Hour
	historicalLimit  = 100
	demandWindow     = 7 * 24 * time.Hour
	predictionTTL    = 24 * time.Hour
)

// Factor weights for the combined price. The base price carries a
// declared weight of 0.30 that is deliberately never folded into the
// multiplier sum, so the applied weights total 0.70. This asymmetry is
// part of the upstream contract; normalizing it would shift every
// suggested price.
const (
	weightBase        = 0.30
	weightMarket      = 0.25
	weightWeather     = 0.15
	weightQuality     = 0.15
	weightDemand      = 0.10
	weightSeasonality = 0.05
)

// minSuggestedPrice is the price floor regardless of inputs.
const minSuggestedPrice = 0.1

// Engine computes price suggestions. It owns two in-process caches: the
// per-day prediction cache and the historical stats cache. Both are
// flushed together by ClearCache.
type Engine struct {
	ledger      domain.TransactionLedger
	predictions *PredictionCache
	stats       *StatsCache
	log         zerolog.Logger
	now         func() time.Time
}

// NewEngine creates a pricing engine backed by the given ledger.
func NewEngine(ledger domain.TransactionLedger, log zerolog.Logger) *Engine {
	return &Engine{
		ledger:      ledger,
		predictions: NewPredictionCache(),
		stats:       NewStatsCache(),
		log:         log.With().Str("component", "pricing_engine").Logger(),
		now:         time.Now,
	}
}

// PredictPrice produces a price suggestion for the queried crop.
//
// Results are cached per cropType|district|calendar-date: a same-day hit
// is returned unchanged even when the market or weather snapshots passed
// on this call differ from the ones the cached prediction was computed
// with. That staleness is a deliberate trade-off favoring deterministic
// same-day answers; ClearCache forces recomputation.
func (e *Engine) PredictPrice(query domain.CropPriceQuery, market *domain.MarketSnapshot, weather *domain.WeatherSnapshot) (*domain.PricePrediction, error) {
	if query.CropType == "" || query.District == "" {
		return nil, fmt.Errorf("%w: crop type and district are required", ErrPredictionFailed)
	}

	now := e.now()
	key := predictionKey(query.CropType, query.District, now)

	if cached, ok := e.predictions.Get(key); ok {
		e.log.Debug().Str("key", key).Msg("Prediction cache hit")
		return cached, nil
	}

	stats := e.historicalStats(query.CropType, query.District, now)
	basePrice := e.basePrice(query.CropType, stats)

	factors := domain.PriceFactors{
		Market:      marketFactor(market, basePrice),
		Weather:     weatherFactor(weather),
		Quality:     qualityFactor(query.QualityGrade),
		Demand:      e.demandFactor(query.CropType, now),
		Seasonality: seasonalityFactor(query.CropType, now.Month()),
	}

	suggested := basePrice * (weightMarket*factors.Market +
		weightWeather*factors.Weather +
		weightQuality*factors.Quality +
		weightDemand*factors.Demand +
		weightSeasonality*factors.Seasonality)
	if suggested < minSuggestedPrice {
		suggested = minSuggestedPrice
	}

	prediction := &domain.PricePrediction{
		SuggestedPrice:  round2(suggested),
		BasePrice:       round2(basePrice),
		Factors:         factors,
		ConfidenceScore: confidenceScore(stats, market, weather),
		Reasoning:       generateReasoning(factors),
		Timestamp:       now,
		ValidUntil:      now.Add(predictionTTL),
	}

	e.predictions.Put(key, prediction)

	e.log.Info().
		Str("crop", string(query.CropType)).
		Str("district", query.District).
		Float64("suggested", prediction.SuggestedPrice).
		Float64("confidence", prediction.ConfidenceScore).
		Int("data_points", stats.DataPoints).
		Msg("Computed price suggestion")

	return prediction, nil
}

// ClearCache flushes both caches unconditionally. Intended for test
// isolation and manual administrative reset.
func (e *Engine) ClearCache() {
	e.predictions.Clear()
	e.stats.Clear()
	e.log.Info().Msg("Pricing caches cleared")
}

// CacheSize returns the number of cached predictions and stat entries.
func (e *Engine) CacheSize() (predictions, stats int) {
	return e.predictions.Len(), e.stats.Len()
}

// historicalStats returns aggregates over recent completed procurement
// transactions, served from the stats cache when possible. Ledger
// failures degrade to the zero-data fallback and are not cached, so the
// next call retries the query.
func (e *Engine) historicalStats(cropType domain.CropType, district string, now time.Time) domain.HistoricalStats {
	key := statsKey(cropType, district)

	if cached, ok := e.stats.Get(key); ok {
		return cached
	}

	points, err := e.ledger.CompletedPurchases(cropType, district, now.Add(-historicalWindow), historicalLimit)
	if err != nil {
		e.log.Warn().Err(err).
			Str("crop", string(cropType)).
			Str("district", district).
			Msg("Historical lookup failed, using zero-data fallback")
		return domain.HistoricalStats{Trend: domain.TrendStable}
	}

	stats := computeHistoricalStats(points)
	e.stats.Put(key, stats)
	return stats
}

// basePrice is the historical average, or the per-crop default when no
// historical data exists.
func (e *Engine) basePrice(cropType domain.CropType, stats domain.HistoricalStats) float64 {
	if stats.DataPoints == 0 {
		if price, ok := defaultBasePrices[cropType]; ok {
			return price
		}
		return fallbackBasePrice
	}
	return stats.AveragePrice
}

// demandFactor derives a multiplier from the 7-day completed retail sales
// count across all districts. Lookup failures are neutral.
func (e *Engine) demandFactor(cropType domain.CropType, now time.Time) float64 {
	count, err := e.ledger.CountCompletedSales(cropType, now.Add(-demandWindow))
	if err != nil {
		e.log.Warn().Err(err).
			Str("crop", string(cropType)).
			Msg("Demand lookup failed, using neutral factor")
		return 1.0
	}
	return demandFactorForCount(count)
}

// confidenceScore rates how much supporting data backed a prediction,
// clamped to [0.1, 1.0].
func confidenceScore(stats domain.HistoricalStats, market *domain.MarketSnapshot, weather *domain.WeatherSnapshot) float64 {
	score := 0.5

	if stats.DataPoints > 50 {
		score += 0.2
	} else if stats.DataPoints > 20 {
		score += 0.1
	}

	if market != nil && market.CurrentPrice != nil {
		score += 0.1
	}

	if weather != nil && weather.Temperature != nil {
		score += 0.1
	}

	// Freshness bonus: the computation timestamp is the current time by
	// construction, so the under-24h check always passes.
	score += 0.1

	return clamp(score, 0.1, 1.0)
}

func predictionKey(cropType domain.CropType, district string, now time.Time) string {
	return string(cropType) + "|" + district + "|" + now.Format("2006-01-02")
}

func statsKey(cropType domain.CropType, district string) string {
	return string(cropType) + "|" + district
}
