package pricing

import (
	"sync"

	"github.com/agrimandi/pricer/internal/domain"
)

// PredictionCache holds computed predictions keyed by
// cropType|district|date. Entries have no TTL; the date in the key makes
// old entries unreachable and a scheduled flush bounds growth.
// Concurrent requests for the same key may race to compute and overwrite
// the same entry; last writer wins, which is acceptable because identical
// inputs produce identical predictions.
type PredictionCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.PricePrediction
}

// NewPredictionCache creates an empty prediction cache.
func NewPredictionCache() *PredictionCache {
	return &PredictionCache{entries: make(map[string]*domain.PricePrediction)}
}

// Get returns the cached prediction for a key, if present.
func (c *PredictionCache) Get(key string) (*domain.PricePrediction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

// Put stores a prediction, overwriting any existing entry for the key.
func (c *PredictionCache) Put(key string, p *domain.PricePrediction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
}

// Clear removes all entries.
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*domain.PricePrediction)
}

// Len returns the number of cached predictions.
func (c *PredictionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StatsCache holds historical aggregates keyed by cropType|district.
// Entries never expire on their own; Clear is the only eviction.
type StatsCache struct {
	mu      sync.RWMutex
	entries map[string]domain.HistoricalStats
}

// NewStatsCache creates an empty historical stats cache.
func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]domain.HistoricalStats)}
}

// Get returns the cached stats for a key, if present.
func (c *StatsCache) Get(key string) (domain.HistoricalStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok
}

// Put stores stats, overwriting any existing entry for the key.
func (c *StatsCache) Put(key string, s domain.HistoricalStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s
}

// Clear removes all entries.
func (c *StatsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.HistoricalStats)
}

// Len returns the number of cached stat entries.
func (c *StatsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
