// Package handlers provides HTTP handlers for price suggestion operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/domain"
	"github.com/agrimandi/pricer/internal/modules/pricing"
)

// Handler handles pricing HTTP requests. Market and weather sources are
// optional; when absent (or failing) the engine treats them as neutral.
type Handler struct {
	engine  *pricing.Engine
	market  domain.MarketDataSource
	weather domain.WeatherDataSource
	log     zerolog.Logger
}

// NewHandler creates a new pricing handler
func NewHandler(engine *pricing.Engine, market domain.MarketDataSource, weather domain.WeatherDataSource, log zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		market:  market,
		weather: weather,
		log:     log.With().Str("handler", "pricing").Logger(),
	}
}

// HandleSuggest handles GET /api/pricing/suggest
// Query params: crop (required), district (required), grade, lat, lon
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	crop := r.URL.Query().Get("crop")
	district := r.URL.Query().Get("district")
	if crop == "" || district == "" {
		http.Error(w, "crop and district are required", http.StatusBadRequest)
		return
	}

	query := domain.CropPriceQuery{
		CropType:     domain.CropType(crop),
		District:     district,
		QualityGrade: domain.QualityGrade(r.URL.Query().Get("grade")),
	}

	market := h.resolveMarket(query.CropType, district)
	weather := h.resolveWeather(r)

	prediction, err := h.engine.PredictPrice(query, market, weather)
	if err != nil {
		h.log.Error().Err(err).Str("crop", crop).Str("district", district).Msg("Prediction failed")
		http.Error(w, "Failed to predict price", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": prediction,
		"metadata": map[string]interface{}{
			"crop":      crop,
			"district":  district,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleClearCache handles POST /api/pricing/cache/clear
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearCache()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"cleared": true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// resolveMarket fetches a market snapshot; failures degrade to nil.
func (h *Handler) resolveMarket(cropType domain.CropType, district string) *domain.MarketSnapshot {
	if h.market == nil {
		return nil
	}

	snapshot, err := h.market.GetSnapshot(cropType, district)
	if err != nil {
		h.log.Warn().Err(err).Str("crop", string(cropType)).Msg("Market lookup failed, proceeding without")
		return nil
	}
	return snapshot
}

// resolveWeather fetches a weather snapshot when coordinates were given;
// failures degrade to nil.
func (h *Handler) resolveWeather(r *http.Request) *domain.WeatherSnapshot {
	if h.weather == nil {
		return nil
	}

	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		return nil
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}

	snapshot, err := h.weather.GetSnapshot(lat, lon)
	if err != nil {
		h.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Weather lookup failed, proceeding without")
		return nil
	}
	return snapshot
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
