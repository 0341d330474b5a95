package pricing

import "github.com/agrimandi/pricer/internal/domain"

// defaultBasePrices are the per-unit fallback prices used when a crop has
// no historical procurement data at all.
var defaultBasePrices = map[domain.CropType]float64{
	domain.CropRice:      25,
	domain.CropWheat:     20,
	domain.CropCorn:      18,
	domain.CropTomato:    30,
	domain.CropPotato:    15,
	domain.CropOnion:     20,
	domain.CropSugarcane: 12,
	domain.CropCotton:    35,
	domain.CropSoybean:   22,
	domain.CropGroundnut: 28,
	domain.CropSunflower: 32,
	domain.CropMillet:    16,
	domain.CropBarley:    18,
}

// fallbackBasePrice covers crop types outside the known table.
const fallbackBasePrice = 20.0

// qualityFactors maps officer-assigned grades to price multipliers.
// Unknown or unset grades are neutral (1.0).
var qualityFactors = map[domain.QualityGrade]float64{
	domain.GradeAPlus: 1.2,
	domain.GradeA:     1.1,
	domain.GradeBPlus: 1.0,
	domain.GradeB:     0.9,
	domain.GradeC:     0.8,
}

// seasonalityFactors holds per-month multipliers (index 0 = January) for
// the crops with a known harvest cycle. Crops without a table are neutral.
var seasonalityFactors = map[domain.CropType][12]float64{
	domain.CropRice:   {1.2, 1.1, 1.0, 0.9, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.2, 1.1},
	domain.CropWheat:  {1.0, 1.1, 1.2, 1.3, 1.2, 1.1, 1.0, 0.9, 0.8, 0.9, 1.0, 1.0},
	domain.CropTomato: {1.3, 1.2, 1.1, 1.0, 0.9, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.3},
	domain.CropPotato: {1.1, 1.0, 0.9, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.2, 1.1, 1.1},
}
