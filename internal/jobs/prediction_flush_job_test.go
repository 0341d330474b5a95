package jobs

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimandi/pricer/internal/domain"
	"github.com/agrimandi/pricer/internal/modules/pricing"
)

type emptyLedger struct{}

func (emptyLedger) CompletedPurchases(domain.CropType, string, time.Time, int) ([]domain.PricePoint, error) {
	return nil, nil
}

func (emptyLedger) CountCompletedSales(domain.CropType, time.Time) (int, error) {
	return 0, nil
}

func TestPredictionFlushJob_Run(t *testing.T) {
	engine := pricing.NewEngine(emptyLedger{}, zerolog.Nop())

	_, err := engine.PredictPrice(domain.CropPriceQuery{
		CropType: domain.CropRice,
		District: "Guntur",
	}, nil, nil)
	require.NoError(t, err)

	predictions, _ := engine.CacheSize()
	require.Equal(t, 1, predictions)

	job := NewPredictionFlushJob(engine, zerolog.Nop())
	require.NoError(t, job.Run())

	predictions, stats := engine.CacheSize()
	assert.Zero(t, predictions)
	assert.Zero(t, stats)
}

func TestPredictionFlushJob_Name(t *testing.T) {
	job := NewPredictionFlushJob(pricing.NewEngine(emptyLedger{}, zerolog.Nop()), zerolog.Nop())
	assert.Equal(t, "prediction_flush", job.Name())
}
