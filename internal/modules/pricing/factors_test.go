package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agrimandi/pricer/internal/domain"
)

func TestWeatherFactor_NilSnapshotIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, weatherFactor(nil))
}

func TestWeatherFactor_DefaultsAreNeutral(t *testing.T) {
	// Empty snapshot falls back to 25°C / 50% humidity / 0mm rainfall.
	// Rainfall 0 < 5 triggers the drought multiplier.
	assert.InDelta(t, 1.1, weatherFactor(&domain.WeatherSnapshot{}), 1e-9)
}

func TestWeatherFactor_ClampedLow(t *testing.T) {
	// Cold, humid, heavy rain: 0.9 × 0.95 × 0.9 = 0.7695, above the floor.
	f := weatherFactor(&domain.WeatherSnapshot{
		Temperature: floatPtr(5),
		Humidity:    floatPtr(90),
		Rainfall:    floatPtr(80),
	})
	assert.InDelta(t, 0.7695, f, 1e-9)
	assert.GreaterOrEqual(t, f, weatherFactorMin)
}

func TestWeatherFactor_WithinBounds(t *testing.T) {
	snapshots := []*domain.WeatherSnapshot{
		{Temperature: floatPtr(45), Humidity: floatPtr(10), Rainfall: floatPtr(0)},
		{Temperature: floatPtr(-5), Humidity: floatPtr(95), Rainfall: floatPtr(200)},
		{Temperature: floatPtr(25), Humidity: floatPtr(50), Rainfall: floatPtr(10)},
	}

	for _, s := range snapshots {
		f := weatherFactor(s)
		assert.GreaterOrEqual(t, f, weatherFactorMin)
		assert.LessOrEqual(t, f, weatherFactorMax)
	}
}

func TestQualityFactor_Lookup(t *testing.T) {
	assert.Equal(t, 1.2, qualityFactor(domain.GradeAPlus))
	assert.Equal(t, 1.1, qualityFactor(domain.GradeA))
	assert.Equal(t, 1.0, qualityFactor(domain.GradeBPlus))
	assert.Equal(t, 0.9, qualityFactor(domain.GradeB))
	assert.Equal(t, 0.8, qualityFactor(domain.GradeC))
	assert.Equal(t, 1.0, qualityFactor(""), "unset grade is neutral")
	assert.Equal(t, 1.0, qualityFactor("Z"), "unknown grade is neutral")
}

func TestMarketFactor_NeutralWithoutData(t *testing.T) {
	assert.Equal(t, 1.0, marketFactor(nil, 20))
	assert.Equal(t, 1.0, marketFactor(&domain.MarketSnapshot{}, 20))
	assert.Equal(t, 1.0, marketFactor(&domain.MarketSnapshot{CurrentPrice: floatPtr(25)}, 0))
}

func TestSeasonalityFactor_Tables(t *testing.T) {
	assert.Equal(t, 1.3, seasonalityFactor(domain.CropRice, time.October))
	assert.Equal(t, 0.8, seasonalityFactor(domain.CropRice, time.May))
	assert.Equal(t, 1.3, seasonalityFactor(domain.CropWheat, time.April))
	assert.Equal(t, 1.3, seasonalityFactor(domain.CropTomato, time.December))
	assert.Equal(t, 0.8, seasonalityFactor(domain.CropPotato, time.April))
	assert.Equal(t, 1.0, seasonalityFactor(domain.CropCotton, time.April), "crops without a table are neutral")
}

func TestGenerateReasoning(t *testing.T) {
	t.Run("no factor outside bands", func(t *testing.T) {
		reasoning := generateReasoning(domain.PriceFactors{
			Market: 1.0, Weather: 1.1, Quality: 1.0, Demand: 0.9, Seasonality: 1.0,
		})
		assert.Equal(t, "Price based on standard market conditions", reasoning)
	})

	t.Run("multiple clauses joined", func(t *testing.T) {
		reasoning := generateReasoning(domain.PriceFactors{
			Market: 1.2, Weather: 0.8, Quality: 1.2, Demand: 1.0, Seasonality: 1.0,
		})
		assert.Equal(t,
			"Current market prices are higher than average; "+
				"Weather conditions may reduce prices; "+
				"High quality grade increases value",
			reasoning)
	})

	t.Run("low side clauses", func(t *testing.T) {
		reasoning := generateReasoning(domain.PriceFactors{
			Market: 0.8, Weather: 1.0, Quality: 0.8, Demand: 1.2, Seasonality: 0.8,
		})
		assert.Equal(t,
			"Current market prices are lower than average; "+
				"Lower quality grade reduces value; "+
				"High recent demand increases price; "+
				"Seasonal factors reduce prices",
			reasoning)
	})
}
