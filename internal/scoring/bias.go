package scoring

import (
	"errors"
	"math"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/match"
)

// Engine computes bias scores from keyword matches and classifier output.
// Weights come from the phrase dictionary so scoring policy stays in data.
type Engine struct {
	dict *match.Dictionary
}

// NewEngine builds a scoring engine over the loaded dictionary.
func NewEngine(dict *match.Dictionary) *Engine {
	return &Engine{dict: dict}
}

// BiasScore sums count x weight across every category, adds a classifier
// signal of up to 20 points when the top label is non-neutral, and clips
// to [0,100]. Text with zero keyword matches always scores 0; the
// classifier can only reinforce keyword evidence, never create a score
// on its own.
func (e *Engine) BiasScore(analysis match.Result, classification ai.Classification) int {
	if e == nil {
		return 0
	}
	score := 0
	for cat, cm := range analysis.Categories {
		score += cm.Count * e.dict.Weight(cat)
	}
	if score > 0 && classification.TopLabel() != ai.LabelNeutral {
		score += int(classification.TopScore() * 20)
	}
	return clampInt(score, 0, 100)
}

// Validate ensures the engine has a usable dictionary.
func (e *Engine) Validate() error {
	if e == nil || e.dict == nil {
		return errors.New("scoring engine missing dictionary")
	}
	return e.dict.Validate()
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
