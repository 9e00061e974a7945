package ai

import (
	"context"
	"errors"
)

// Candidate labels for zero-shot classification.
const (
	LabelAgeBias      = "age-bias"
	LabelGenderBias   = "gender-bias"
	LabelCultureFit   = "culture-fit-bias"
	LabelExclusionary = "exclusionary-language"
	LabelDisability   = "disability-bias"
	LabelNeutral      = "neutral"
)

// CandidateLabels is the fixed label set sent to the classifier.
var CandidateLabels = []string{
	LabelAgeBias,
	LabelGenderBias,
	LabelCultureFit,
	LabelExclusionary,
	LabelDisability,
	LabelNeutral,
}

// Classification is the result of classifying one piece of text. Labels
// are ordered by descending confidence and Scores is parallel to Labels.
type Classification struct {
	Labels           []string  `json:"labels"`
	Scores           []float64 `json:"scores"`
	CalibratedScores []float64 `json:"calibrated_scores,omitempty"`
	Fallback         bool      `json:"fallback"`
	Provider         string    `json:"provider"`
	LatencyMS        int64     `json:"latency_ms"`
}

// Classifier labels text against the candidate label set.
type Classifier interface {
	Enabled() bool
	Classify(ctx context.Context, text string) (Classification, error)
}

var ErrUnavailable = errors.New("classifier unavailable")

// TopLabel returns the highest-confidence label, or neutral when empty.
func (c Classification) TopLabel() string {
	if len(c.Labels) == 0 {
		return LabelNeutral
	}
	return c.Labels[0]
}

// TopScore returns the highest confidence score.
func (c Classification) TopScore() float64 {
	if len(c.Scores) == 0 {
		return 0
	}
	return c.Scores[0]
}

// WellFormed reports whether labels and scores line up.
func (c Classification) WellFormed() bool {
	return len(c.Labels) > 0 && len(c.Labels) == len(c.Scores)
}

// Calibrate normalizes each label score against the neutral score so the
// result reads as "probability of bias vs neutral" instead of a softmax
// share across all labels. Neutral itself is normalized against the best
// non-neutral score.
func Calibrate(labels []string, scores []float64) []float64 {
	if len(labels) == 0 || len(labels) != len(scores) {
		return nil
	}
	const eps = 1e-10

	neutral := 0.0
	bestOther := 0.0
	for i, label := range labels {
		if label == LabelNeutral {
			neutral = scores[i]
		} else if scores[i] > bestOther {
			bestOther = scores[i]
		}
	}

	out := make([]float64, len(scores))
	for i, label := range labels {
		if label == LabelNeutral {
			out[i] = scores[i] / (scores[i] + bestOther + eps)
			continue
		}
		out[i] = scores[i] / (scores[i] + neutral + eps)
	}
	return out
}
