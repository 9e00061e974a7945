package ai

import (
	"context"
	"math"
	"sort"
	"strings"

	"biaslens/backend/internal/match"
	"biaslens/backend/internal/util"
)

// ProviderKeywordFallback identifies classifications derived from
// dictionary matches instead of the external model.
const ProviderKeywordFallback = "keyword-fallback"

// KeywordClassifier derives a deterministic classification from keyword
// matches. It backs the external classifier so the pipeline always
// receives a well-formed result.
type KeywordClassifier struct {
	matcher *match.Matcher
}

// NewKeywordClassifier wraps a matcher as a Classifier.
func NewKeywordClassifier(matcher *match.Matcher) *KeywordClassifier {
	return &KeywordClassifier{matcher: matcher}
}

// Enabled reports whether the classifier can run.
func (k *KeywordClassifier) Enabled() bool {
	return k != nil && k.matcher != nil
}

type inference struct {
	label string
	base  float64
	count int
	rank  int
}

// Classify infers labels from match counts. The most-matched category
// rises to the top; scores grow with match count and never reach 1.
func (k *KeywordClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	if k == nil || k.matcher == nil {
		return Classification{}, ErrUnavailable
	}

	timer := util.StartTimer()
	if strings.TrimSpace(text) == "" {
		return Classification{
			Labels:   []string{LabelNeutral},
			Scores:   []float64{1.0},
			Fallback: true,
			Provider: ProviderKeywordFallback,
		}, nil
	}

	analysis := k.matcher.Match(text)
	candidates := []inference{
		{label: LabelExclusionary, base: 0.8, count: analysis.Count(match.CategoryExclusionary), rank: 0},
		{label: LabelGenderBias, base: 0.7, count: analysis.Count(match.CategoryMasculine) + analysis.Count(match.CategoryFeminine), rank: 1},
		{label: LabelAgeBias, base: 0.7, count: analysis.Count(match.CategoryAge), rank: 2},
		{label: LabelDisability, base: 0.7, count: analysis.Count(match.CategoryDisability), rank: 3},
		{label: LabelCultureFit, base: 0.6, count: analysis.Count(match.CategoryCulturalFit), rank: 4},
	}

	var kept []inference
	for _, cand := range candidates {
		if cand.count == 0 {
			continue
		}
		cand.base = math.Min(0.95, cand.base+0.05*float64(cand.count-1))
		kept = append(kept, cand)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].base != kept[j].base {
			return kept[i].base > kept[j].base
		}
		if kept[i].count != kept[j].count {
			return kept[i].count > kept[j].count
		}
		return kept[i].rank < kept[j].rank
	})

	labels := make([]string, 0, len(kept)+1)
	scores := make([]float64, 0, len(kept)+1)
	for _, cand := range kept {
		labels = append(labels, cand.label)
		scores = append(scores, cand.base)
	}
	labels = append(labels, LabelNeutral)
	scores = append(scores, 0.5)

	return Classification{
		Labels:           labels,
		Scores:           scores,
		CalibratedScores: Calibrate(labels, scores),
		Fallback:         true,
		Provider:         ProviderKeywordFallback,
		LatencyMS:        timer.ElapsedMs(),
	}, nil
}
