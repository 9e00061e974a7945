package scoring

import "biaslens/backend/internal/match"

// Interpretation bands for the overall inclusivity score.
const (
	InterpretationHigh     = "Highly Inclusive"
	InterpretationModerate = "Moderate"
	InterpretationLow      = "Needs Improvement"
)

// InclusivityScore is the UI-facing framing of the analysis. Overall is
// higher-is-better (100 - bias score) while each breakdown entry is the
// bias level in that category, higher-is-worse. Consumers correlate the
// two as-is, so neither convention may be flipped.
type InclusivityScore struct {
	Overall        float64            `json:"overall"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Interpretation string             `json:"interpretation"`
}

// Stable breakdown keys the UI addresses literally.
const (
	breakdownGender       = "gender_bias"
	breakdownAge          = "age_bias"
	breakdownExclusionary = "exclusionary_language"
	breakdownCulturalFit  = "cultural_fit_bias"
	breakdownDisability   = "disability_bias"
	breakdownAppearance   = "appearance_bias"
)

// Inclusivity derives the overall score and per-category breakdown from
// keyword matches and the already-computed bias score.
func (e *Engine) Inclusivity(analysis match.Result, biasScore int) InclusivityScore {
	breakdown := map[string]float64{
		breakdownGender: e.categoryLevel(analysis, match.CategoryMasculine) +
			e.categoryLevel(analysis, match.CategoryFeminine),
		breakdownAge:          e.categoryLevel(analysis, match.CategoryAge),
		breakdownExclusionary: e.categoryLevel(analysis, match.CategoryExclusionary),
		breakdownCulturalFit:  e.categoryLevel(analysis, match.CategoryCulturalFit),
		breakdownDisability:   e.categoryLevel(analysis, match.CategoryDisability),
		breakdownAppearance:   e.categoryLevel(analysis, match.CategoryAppearance),
	}
	for key, value := range breakdown {
		breakdown[key] = clampFloat(value, 0, 100)
	}

	overall := clampFloat(float64(100-biasScore), 0, 100)
	return InclusivityScore{
		Overall:        overall,
		Breakdown:      breakdown,
		Interpretation: interpretOverall(overall),
	}
}

func (e *Engine) categoryLevel(analysis match.Result, cat match.Category) float64 {
	if e == nil {
		return 0
	}
	return float64(analysis.Count(cat) * e.dict.Weight(cat))
}

func interpretOverall(overall float64) string {
	switch {
	case overall >= 80:
		return InterpretationHigh
	case overall >= 60:
		return InterpretationModerate
	default:
		return InterpretationLow
	}
}
