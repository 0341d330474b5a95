// Package jobs contains scheduled maintenance jobs for the pricing service.
package jobs

import (
	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/modules/pricing"
)

// PredictionFlushJob clears the pricing engine's in-process caches.
// Prediction cache keys carry the calendar date, so at midnight every
// cached entry becomes unreachable; flushing nightly keeps the maps from
// growing without bound and forces fresh historical stats each day.
type PredictionFlushJob struct {
	engine *pricing.Engine
	log    zerolog.Logger
}

// NewPredictionFlushJob creates a new prediction cache flush job.
func NewPredictionFlushJob(engine *pricing.Engine, log zerolog.Logger) *PredictionFlushJob {
	return &PredictionFlushJob{
		engine: engine,
		log:    log.With().Str("job", "prediction_flush").Logger(),
	}
}

// Run flushes the pricing caches.
func (j *PredictionFlushJob) Run() error {
	predictions, stats := j.engine.CacheSize()
	j.engine.ClearCache()

	j.log.Info().
		Int("predictions", predictions).
		Int("stats", stats).
		Msg("Flushed pricing caches")

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *PredictionFlushJob) Name() string {
	return "prediction_flush"
}
