// Package agmark provides mandi commodity price fetching and caching from
// the data.gov.in market price dataset.
package agmark

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrimandi/pricer/internal/domain"
	"github.com/agrimandi/pricer/internal/marketdata"
)

const cacheTable = "mandi_prices"

// Client for the data.gov.in mandi price API
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *marketdata.Repository
}

// NewClient creates a new mandi price client.
// cacheRepo is optional - if nil, caching is disabled.
// An empty apiKey disables the client: GetSnapshot returns no data.
func NewClient(baseURL, apiKey string, cacheRepo *marketdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "agmark").Logger(),
		cacheRepo: cacheRepo,
	}
}

// cachedPrice is the structure stored in the cache
type cachedPrice struct {
	Price float64 `json:"price"`
}

// apiResponse is the subset of the dataset response we consume.
// Modal prices are quoted in rupees per quintal.
type apiResponse struct {
	Records []struct {
		ModalPrice string `json:"modal_price"`
	} `json:"records"`
}

// GetSnapshot fetches the current mandi price for a crop in a district,
// with cache. If the API fails, returns stale cached data if available
// (stale data > no data). A nil snapshot means no data is available.
func (c *Client) GetSnapshot(cropType domain.CropType, district string) (*domain.MarketSnapshot, error) {
	if c.apiKey == "" {
		// No API key configured: the engine runs without market data.
		return nil, nil
	}

	cacheKey := string(cropType) + ":" + district

	// Check persistent cache for fresh data
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(cacheTable, cacheKey)
		if err == nil && data != nil {
			var cached cachedPrice
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("crop", string(cropType)).
					Str("district", district).
					Float64("price", cached.Price).
					Msg("Cache hit")
				return snapshot(cached.Price), nil
			}
		}
	}

	// Fetch from API
	reqURL := c.buildURL(cropType, district)
	c.log.Debug().Str("url", reqURL).Msg("Fetching mandi prices")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().Err(err).
				Str("crop", string(cropType)).
				Str("district", district).
				Float64("price", stale).
				Msg("API failed, using stale cached price")
			return snapshot(stale), nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("crop", string(cropType)).
				Str("district", district).
				Float64("price", stale).
				Msg("API error, using stale cached price")
			return snapshot(stale), nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().Err(err).
				Str("crop", string(cropType)).
				Float64("price", stale).
				Msg("Failed to parse API response, using stale cached price")
			return snapshot(stale), nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Records) == 0 {
		// The dataset has no row for this crop/district; not an error.
		c.log.Debug().
			Str("crop", string(cropType)).
			Str("district", district).
			Msg("No mandi price records")
		return nil, nil
	}

	modalPrice, err := strconv.ParseFloat(result.Records[0].ModalPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid modal price %q: %w", result.Records[0].ModalPrice, err)
	}

	// Modal prices are per quintal; the marketplace trades per kilogram.
	price := modalPrice / 100

	// Cache persistently
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(cacheTable, cacheKey, cachedPrice{Price: price}, marketdata.TTLMandiPrice); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache mandi price")
		}
	}

	c.log.Info().
		Str("crop", string(cropType)).
		Str("district", district).
		Float64("price", price).
		Msg("Fetched mandi price")

	return snapshot(price), nil
}

// buildURL assembles the filtered dataset query.
func (c *Client) buildURL(cropType domain.CropType, district string) string {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("filters[commodity]", commodityName(cropType))
	params.Set("filters[district]", district)
	return c.baseURL + "?" + params.Encode()
}

// commodityName maps the uppercase crop enum to the dataset's
// title-case commodity names.
func commodityName(cropType domain.CropType) string {
	name := strings.ToLower(string(cropType))
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// getStaleFromCache retrieves a cached price even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (c *Client) getStaleFromCache(cacheKey string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}

	data, err := c.cacheRepo.Get(cacheTable, cacheKey)
	if err != nil || data == nil {
		return 0, false
	}

	var cached cachedPrice
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}

	return cached.Price, true
}

func snapshot(price float64) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{CurrentPrice: &price}
}
