package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimandi/pricer/internal/domain"
)

// fakeLedger is an in-memory TransactionLedger for engine tests.
type fakeLedger struct {
	points        []domain.PricePoint
	purchasesErr  error
	salesCount    int
	salesErr      error
	purchaseCalls int
}

func (f *fakeLedger) CompletedPurchases(cropType domain.CropType, district string, since time.Time, limit int) ([]domain.PricePoint, error) {
	f.purchaseCalls++
	if f.purchasesErr != nil {
		return nil, f.purchasesErr
	}
	return f.points, nil
}

func (f *fakeLedger) CountCompletedSales(cropType domain.CropType, since time.Time) (int, error) {
	if f.salesErr != nil {
		return 0, f.salesErr
	}
	return f.salesCount, nil
}

func newTestEngine(ledger *fakeLedger) *Engine {
	e := NewEngine(ledger, zerolog.Nop())
	// Pin the clock so calendar date, month and cache keys are stable.
	e.now = func() time.Time {
		return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	}
	return e
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestPredictPrice_DefaultBasePriceWithoutHistory(t *testing.T) {
	engine := newTestEngine(&fakeLedger{})

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropRice,
		District: "Guntur",
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 25.00, pred.BasePrice, "RICE with no history should use the default table entry")
}

func TestPredictPrice_UnknownCropFallsBackToTwenty(t *testing.T) {
	engine := newTestEngine(&fakeLedger{})

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: "DRAGONFRUIT",
		District: "Guntur",
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 20.00, pred.BasePrice)
}

func TestPredictPrice_WheatEndToEnd(t *testing.T) {
	// January clock: WHEAT seasonality = 1.0. Hot, dry, rainless weather:
	// 1.0 × 1.1 × 1.05 × 1.1 = 1.2705, inside [0.7, 1.3]. Demand count 0
	// gives 0.9; market and quality are neutral.
	// 20 × (0.25×1.0 + 0.15×1.2705 + 0.15×1.0 + 0.10×0.9 + 0.05×1.0) = 14.6115
	engine := newTestEngine(&fakeLedger{salesCount: 0})

	weather := &domain.WeatherSnapshot{
		Temperature: floatPtr(40),
		Humidity:    floatPtr(20),
		Rainfall:    floatPtr(0),
	}

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropWheat,
		District: "Karnal",
	}, nil, weather)
	require.NoError(t, err)

	assert.Equal(t, 20.00, pred.BasePrice)
	assert.InDelta(t, 1.2705, pred.Factors.Weather, 1e-9)
	assert.Equal(t, 1.0, pred.Factors.Market)
	assert.Equal(t, 1.0, pred.Factors.Quality)
	assert.Equal(t, 0.9, pred.Factors.Demand)
	assert.Equal(t, 1.0, pred.Factors.Seasonality)
	assert.Equal(t, 14.61, pred.SuggestedPrice)

	// 0.5 base + 0.1 temperature + 0.1 freshness
	assert.InDelta(t, 0.7, pred.ConfidenceScore, 1e-9)
	assert.Equal(t, "Weather conditions favor higher prices", pred.Reasoning)
	assert.Equal(t, 24*time.Hour, pred.ValidUntil.Sub(pred.Timestamp))
}

func TestPredictPrice_BasePriceFromHistoricalAverage(t *testing.T) {
	engine := newTestEngine(&fakeLedger{points: []domain.PricePoint{
		{PricePerUnit: 30},
		{PricePerUnit: 20},
	}})

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropTomato,
		District: "Nashik",
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 25.00, pred.BasePrice, "base price should be the historical mean, not the default")
}

func TestPredictPrice_FloorInvariant(t *testing.T) {
	engine := newTestEngine(&fakeLedger{points: []domain.PricePoint{
		{PricePerUnit: 0.01},
	}})

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropOnion,
		District: "Pune",
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.1, pred.SuggestedPrice, "suggested price is floored at 0.1")
}

func TestPredictPrice_MarketFactorClamped(t *testing.T) {
	tests := []struct {
		name        string
		marketPrice float64
		want        float64
	}{
		{"far above base clamps high", 100, 1.2},
		{"far below base clamps low", 1, 0.8},
		{"near base unclamped", 22, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&fakeLedger{})

			pred, err := engine.PredictPrice(domain.CropPriceQuery{
				CropType: domain.CropWheat, // default base 20
				District: "Karnal",
			}, &domain.MarketSnapshot{CurrentPrice: floatPtr(tt.marketPrice)}, nil)
			require.NoError(t, err)

			assert.InDelta(t, tt.want, pred.Factors.Market, 1e-9)
		})
	}
}

func TestPredictPrice_SameDayCacheHitIgnoresNewSnapshots(t *testing.T) {
	ledger := &fakeLedger{}
	engine := newTestEngine(ledger)

	query := domain.CropPriceQuery{CropType: domain.CropWheat, District: "Karnal"}

	first, err := engine.PredictPrice(query, nil, nil)
	require.NoError(t, err)

	// Second call with completely different snapshots must return the
	// cached prediction unchanged and must not touch the ledger again.
	second, err := engine.PredictPrice(query,
		&domain.MarketSnapshot{CurrentPrice: floatPtr(35)},
		&domain.WeatherSnapshot{Temperature: floatPtr(40)})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, ledger.purchaseCalls)
}

func TestClearCache_ForcesRecomputation(t *testing.T) {
	ledger := &fakeLedger{}
	engine := newTestEngine(ledger)

	query := domain.CropPriceQuery{CropType: domain.CropWheat, District: "Karnal"}

	_, err := engine.PredictPrice(query, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.purchaseCalls)

	engine.ClearCache()

	predictions, stats := engine.CacheSize()
	assert.Zero(t, predictions)
	assert.Zero(t, stats)

	_, err = engine.PredictPrice(query, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.purchaseCalls, "cleared cache must recompute from the ledger")
}

func TestPredictPrice_LedgerFailureDegradesToDefaults(t *testing.T) {
	engine := newTestEngine(&fakeLedger{
		purchasesErr: errors.New("ledger down"),
		salesErr:     errors.New("ledger down"),
	})

	pred, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropRice,
		District: "Guntur",
	}, nil, nil)
	require.NoError(t, err, "sub-lookup failures must never surface")

	assert.Equal(t, 25.00, pred.BasePrice, "zero-data fallback applies on ledger error")
	assert.Equal(t, 1.0, pred.Factors.Demand, "demand lookup failure is neutral")
}

func TestPredictPrice_LedgerErrorIsNotCached(t *testing.T) {
	ledger := &fakeLedger{purchasesErr: errors.New("ledger down")}
	engine := newTestEngine(ledger)

	engine.historicalStats(domain.CropRice, "Guntur", engine.now())
	engine.historicalStats(domain.CropRice, "Guntur", engine.now())

	assert.Equal(t, 2, ledger.purchaseCalls, "failed lookups must not be cached")
}

func TestPredictPrice_EmptyQueryRejected(t *testing.T) {
	engine := newTestEngine(&fakeLedger{})

	_, err := engine.PredictPrice(domain.CropPriceQuery{}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPredictionFailed)
}

func TestConfidenceScore_Bounds(t *testing.T) {
	// Everything supplied: 0.5 + 0.2 + 0.1 + 0.1 + 0.1 = 1.0
	full := confidenceScore(
		domain.HistoricalStats{DataPoints: 60},
		&domain.MarketSnapshot{CurrentPrice: floatPtr(25)},
		&domain.WeatherSnapshot{Temperature: floatPtr(30)},
	)
	assert.InDelta(t, 1.0, full, 1e-9)

	// Nothing supplied: 0.5 + 0.1 freshness
	bare := confidenceScore(domain.HistoricalStats{}, nil, nil)
	assert.InDelta(t, 0.6, bare, 1e-9)

	// Moderate history: 0.5 + 0.1 + 0.1 freshness
	moderate := confidenceScore(domain.HistoricalStats{DataPoints: 30}, nil, nil)
	assert.InDelta(t, 0.7, moderate, 1e-9)
}

func TestDemandFactorThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0.9},
		{5, 0.9},
		{6, 1.0},
		{20, 1.0},
		{21, 1.1},
		{50, 1.1},
		{51, 1.2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, demandFactorForCount(tt.count), "count=%d", tt.count)
	}
}
