// Package openweather provides weather snapshot fetching and caching from
// the OpenWeatherMap current conditions API.
package openweather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/domain"
	"github.com/agrimandi/pricer/internal/marketdata"
)

const cacheTable = "weather"

// Client for the OpenWeatherMap current weather API
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *marketdata.Repository
}

// NewClient creates a new weather client.
// cacheRepo is optional - if nil, caching is disabled.
// An empty apiKey disables the client: GetSnapshot returns no data.
func NewClient(baseURL, apiKey string, cacheRepo *marketdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "openweather").Logger(),
		cacheRepo: cacheRepo,
	}
}

// cachedWeather is the structure stored in the cache
type cachedWeather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
}

// apiResponse is the subset of the OpenWeatherMap response we consume.
type apiResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// GetSnapshot fetches current weather for coordinates, with cache.
// If the API fails, returns stale cached data if available.
// A nil snapshot means no data is available.
func (c *Client) GetSnapshot(latitude, longitude float64) (*domain.WeatherSnapshot, error) {
	if c.apiKey == "" {
		// No API key configured: the engine runs without weather data.
		return nil, nil
	}

	cacheKey := fmt.Sprintf("%.2f:%.2f", latitude, longitude)

	// Check persistent cache for fresh data
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(cacheTable, cacheKey)
		if err == nil && data != nil {
			var cached cachedWeather
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("location", cacheKey).
					Float64("temp", cached.Temperature).
					Msg("Cache hit")
				return cached.snapshot(), nil
			}
		}
	}

	// Fetch from API
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	reqURL := c.baseURL + "?" + params.Encode()

	c.log.Debug().Str("location", cacheKey).Msg("Fetching weather")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().Err(err).
				Str("location", cacheKey).
				Msg("API failed, using stale cached weather")
			return stale.snapshot(), nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("location", cacheKey).
				Msg("API error, using stale cached weather")
			return stale.snapshot(), nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().Err(err).
				Str("location", cacheKey).
				Msg("Failed to parse API response, using stale cached weather")
			return stale.snapshot(), nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	observed := cachedWeather{
		Temperature: result.Main.Temp,
		Humidity:    result.Main.Humidity,
		Rainfall:    result.Rain.OneHour, // absent "rain" object decodes to 0
	}

	// Cache persistently
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(cacheTable, cacheKey, observed, marketdata.TTLWeather); err != nil {
			c.log.Warn().Err(err).Str("location", cacheKey).Msg("Failed to cache weather")
		}
	}

	c.log.Info().
		Str("location", cacheKey).
		Float64("temp", observed.Temperature).
		Float64("humidity", observed.Humidity).
		Float64("rainfall", observed.Rainfall).
		Msg("Fetched weather")

	return observed.snapshot(), nil
}

// getStaleFromCache retrieves cached weather even if expired.
func (c *Client) getStaleFromCache(cacheKey string) (*cachedWeather, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(cacheTable, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached cachedWeather
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return &cached, true
}

func (c cachedWeather) snapshot() *domain.WeatherSnapshot {
	temp, hum, rain := c.Temperature, c.Humidity, c.Rainfall
	return &domain.WeatherSnapshot{
		Temperature: &temp,
		Humidity:    &hum,
		Rainfall:    &rain,
	}
}
