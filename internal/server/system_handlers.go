package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/agrimandi/pricer/internal/database"
)

// SystemHandlers exposes health and statistics endpoints.
type SystemHandlers struct {
	log          zerolog.Logger
	ledgerDB     *database.DB
	marketDataDB *database.DB
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(log zerolog.Logger, ledgerDB, marketDataDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:          log.With().Str("handler", "system").Logger(),
		ledgerDB:     ledgerDB,
		marketDataDB: marketDataDB,
	}
}

// HandleLiveness handles GET /health - a bare liveness probe.
func (h *SystemHandlers) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleHealth handles GET /api/system/health - database pings plus
// host resource usage.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	databases := map[string]string{}

	for _, db := range []*database.DB{h.ledgerDB, h.marketDataDB} {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("db", db.Name()).Msg("Database health check failed")
			databases[db.Name()] = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			databases[db.Name()] = "ok"
		}
	}

	system := map[string]interface{}{}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		system["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		system["memory_percent"] = memStat.UsedPercent
		system["memory_used_mb"] = memStat.Used / 1024 / 1024
	}

	h.writeJSON(w, status, map[string]interface{}{
		"data": map[string]interface{}{
			"databases": databases,
			"system":    system,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleStats handles GET /api/system/stats - database size statistics.
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}

	for _, db := range []*database.DB{h.ledgerDB, h.marketDataDB} {
		if db == nil {
			continue
		}
		dbStats, err := db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("db", db.Name()).Msg("Failed to get database stats")
			continue
		}
		stats[db.Name()] = map[string]int64{
			"size_bytes":     dbStats.SizeBytes,
			"wal_size_bytes": dbStats.WALSizeBytes,
			"page_count":     dbStats.PageCount,
			"page_size":      dbStats.PageSize,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": stats,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
