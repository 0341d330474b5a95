package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/agrimandi/pricer/internal/domain"
)

// Factor clamp bounds.
const (
	marketFactorMin  = 0.8
	marketFactorMax  = 1.2
	weatherFactorMin = 0.7
	weatherFactorMax = 1.3
)

// Weather defaults applied when a snapshot omits a field.
const (
	defaultTemperature = 25.0 // °C
	defaultHumidity    = 50.0 // %
	defaultRainfall    = 0.0  // mm
)

// marketFactor compares the current market price against the base price,
// clamped to [0.8, 1.2]. Absent market data is neutral.
func marketFactor(market *domain.MarketSnapshot, basePrice float64) float64 {
	if market == nil || market.CurrentPrice == nil || basePrice <= 0 {
		return 1.0
	}
	return clamp(*market.CurrentPrice/basePrice, marketFactorMin, marketFactorMax)
}

// weatherFactor derives a multiplier from temperature, humidity and
// rainfall, clamped to [0.7, 1.3]. Absent snapshot is neutral; absent
// fields fall back to neutral defaults.
func weatherFactor(weather *domain.WeatherSnapshot) float64 {
	if weather == nil {
		return 1.0
	}

	temperature := defaultTemperature
	if weather.Temperature != nil {
		temperature = *weather.Temperature
	}
	humidity := defaultHumidity
	if weather.Humidity != nil {
		humidity = *weather.Humidity
	}
	rainfall := defaultRainfall
	if weather.Rainfall != nil {
		rainfall = *weather.Rainfall
	}

	factor := 1.0

	// Extreme heat raises demand for fresh produce; cold suppresses it.
	if temperature > 35 {
		factor *= 1.1
	} else if temperature < 10 {
		factor *= 0.9
	}

	// High humidity hurts storage; dry air raises demand.
	if humidity > 80 {
		factor *= 0.95
	} else if humidity < 30 {
		factor *= 1.05
	}

	// Heavy rainfall disrupts supply; drought conditions push prices up.
	if rainfall > 50 {
		factor *= 0.9
	} else if rainfall < 5 {
		factor *= 1.1
	}

	return clamp(factor, weatherFactorMin, weatherFactorMax)
}

// qualityFactor maps a grade to its multiplier; unknown grades are neutral.
func qualityFactor(grade domain.QualityGrade) float64 {
	if f, ok := qualityFactors[grade]; ok {
		return f
	}
	return 1.0
}

// demandFactorForCount maps a 7-day completed sales count to a multiplier.
func demandFactorForCount(count int) float64 {
	switch {
	case count > 50:
		return 1.2
	case count > 20:
		return 1.1
	case count > 5:
		return 1.0
	default:
		return 0.9
	}
}

// seasonalityFactor looks up the per-month multiplier for a crop.
// Crops without a seasonality table are neutral.
func seasonalityFactor(cropType domain.CropType, month time.Month) float64 {
	table, ok := seasonalityFactors[cropType]
	if !ok {
		return 1.0
	}
	return table[int(month)-1]
}

// reasonClause holds the explanation pair for one factor.
type reasonClause struct {
	high string
	low  string
}

var factorReasons = []struct {
	value  func(domain.PriceFactors) float64
	clause reasonClause
}{
	{func(f domain.PriceFactors) float64 { return f.Market }, reasonClause{
		high: "Current market prices are higher than average",
		low:  "Current market prices are lower than average",
	}},
	{func(f domain.PriceFactors) float64 { return f.Weather }, reasonClause{
		high: "Weather conditions favor higher prices",
		low:  "Weather conditions may reduce prices",
	}},
	{func(f domain.PriceFactors) float64 { return f.Quality }, reasonClause{
		high: "High quality grade increases value",
		low:  "Lower quality grade reduces value",
	}},
	{func(f domain.PriceFactors) float64 { return f.Demand }, reasonClause{
		high: "High recent demand increases price",
		low:  "Lower demand reduces price",
	}},
	{func(f domain.PriceFactors) float64 { return f.Seasonality }, reasonClause{
		high: "Seasonal factors favor higher prices",
		low:  "Seasonal factors reduce prices",
	}},
}

// generateReasoning builds the human-readable rationale. A factor speaks
// up only when it moved the price beyond the 1.1 / 0.9 bands.
func generateReasoning(factors domain.PriceFactors) string {
	var reasons []string

	for _, fr := range factorReasons {
		v := fr.value(factors)
		if v > 1.1 {
			reasons = append(reasons, fr.clause.high)
		} else if v < 0.9 {
			reasons = append(reasons, fr.clause.low)
		}
	}

	if len(reasons) == 0 {
		return "Price based on standard market conditions"
	}
	return strings.Join(reasons, "; ")
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
