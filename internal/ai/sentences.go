package ai

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// SentenceInsight flags one sentence whose top non-neutral label crossed
// the display threshold.
type SentenceInsight struct {
	Sentence        string  `json:"sentence"`
	Label           string  `json:"label"`
	Score           float64 `json:"score"`
	CalibratedScore float64 `json:"calibrated_score"`
	ConfidenceLevel string  `json:"confidence_level"`
}

const (
	insightThreshold    = 0.30
	highConfidenceScore = 0.60
	maxSentenceInsights = 3
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// SplitSentences segments text on terminal punctuation, dropping blanks.
func SplitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ClassifySentences scores each sentence independently. It returns at most
// maxSentenceInsights insights ordered by descending score, plus the total
// number of sentences scored so callers can report "N of M". Sentences
// scoring below the high-confidence bar are kept but tagged low.
func ClassifySentences(ctx context.Context, clf Classifier, text string) ([]SentenceInsight, int, error) {
	if clf == nil || !clf.Enabled() {
		return nil, 0, ErrUnavailable
	}

	sentences := SplitSentences(text)
	insights := make([]SentenceInsight, 0, len(sentences))
	for _, sentence := range sentences {
		result, err := clf.Classify(ctx, sentence)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		label, score, calibrated, ok := topNonNeutral(result)
		if !ok || score < insightThreshold {
			continue
		}
		level := "high"
		if score < highConfidenceScore {
			level = "low"
		}
		insights = append(insights, SentenceInsight{
			Sentence:        sentence,
			Label:           label,
			Score:           score,
			CalibratedScore: calibrated,
			ConfidenceLevel: level,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Score > insights[j].Score
	})
	if len(insights) > maxSentenceInsights {
		insights = insights[:maxSentenceInsights]
	}
	return insights, len(sentences), nil
}

func topNonNeutral(result Classification) (string, float64, float64, bool) {
	if !result.WellFormed() {
		return "", 0, 0, false
	}
	for i, label := range result.Labels {
		if label == LabelNeutral {
			continue
		}
		calibrated := result.Scores[i]
		if i < len(result.CalibratedScores) {
			calibrated = result.CalibratedScores[i]
		}
		return label, result.Scores[i], calibrated, true
	}
	return "", 0, 0, false
}
