package scoring

import (
	"strings"

	"biaslens/backend/internal/match"
)

// Weights for the exclusionary sub-kinds that hit international candidates.
const (
	visaWeight       = 30
	languageWeight   = 20
	geographicWeight = 15
)

// InternationalBreakdown counts the issue kinds behind the international
// student bias score.
type InternationalBreakdown struct {
	VisaRequirements    int `json:"visa_requirements"`
	LanguageBias        int `json:"language_bias"`
	CulturalAssumptions int `json:"cultural_assumptions"`
	OtherExclusionary   int `json:"other_exclusionary"`
}

// InternationalScore weighs the exclusionary_language matches concerning
// visa, native-language, and geographic requirements, clipped to [0,100]
// independently of the main bias score.
func (e *Engine) InternationalScore(analysis match.Result) int {
	if e == nil {
		return 0
	}
	score := 0
	for _, phrase := range analysis.Matches(match.CategoryExclusionary) {
		switch internationalKind(phrase) {
		case kindVisa:
			score += visaWeight
		case kindLanguage:
			score += languageWeight
		case kindGeographic:
			score += geographicWeight
		}
	}
	return clampInt(score, 0, 100)
}

// InternationalBreakdown reports the issue counts surfaced alongside the
// international score. Visa and language counts scan phrases
// independently, so a phrase naming both kinds counts under each.
func (e *Engine) InternationalBreakdown(analysis match.Result) InternationalBreakdown {
	var breakdown InternationalBreakdown
	if e == nil {
		return breakdown
	}
	for _, phrase := range analysis.Matches(match.CategoryExclusionary) {
		p := strings.ToLower(phrase)
		if strings.Contains(p, "visa") || strings.Contains(p, "sponsorship") ||
			strings.Contains(p, "eligible to work") || strings.Contains(p, "authorized to work") ||
			strings.Contains(p, "citizen") {
			breakdown.VisaRequirements++
		}
		if strings.Contains(p, "native") || strings.Contains(p, "english") {
			breakdown.LanguageBias++
		}
	}
	breakdown.CulturalAssumptions = analysis.Count(match.CategoryCulturalFit)
	breakdown.OtherExclusionary = analysis.Count(match.CategoryMasculine) + analysis.Count(match.CategoryAge)
	return breakdown
}

type phraseKind int

const (
	kindNone phraseKind = iota
	kindVisa
	kindLanguage
	kindGeographic
)

func internationalKind(phrase string) phraseKind {
	p := strings.ToLower(phrase)
	switch {
	case strings.Contains(p, "visa") || strings.Contains(p, "sponsorship") ||
		strings.Contains(p, "eligible to work") || strings.Contains(p, "authorized to work") ||
		strings.Contains(p, "citizen"):
		return kindVisa
	case strings.Contains(p, "native") || strings.Contains(p, "english"):
		return kindLanguage
	case strings.Contains(p, "local experience") || strings.Contains(p, "north american") ||
		strings.Contains(p, "canadian") || strings.Contains(p, "american"):
		return kindGeographic
	}
	return kindNone
}
