package api

import (
	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/match"
	"biaslens/backend/internal/scoring"
)

// TextInput is the request body shared by the analyze and rewrite
// endpoints. NLP classification is opt-in because the remote model adds
// seconds of latency; keyword inference is the fast default.
type TextInput struct {
	Text   string `json:"text"`
	UseNLP bool   `json:"use_nlp"`
}

// BatchJob is one posting inside a batch analysis request.
type BatchJob struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	UseNLP bool   `json:"use_nlp"`
}

// BatchRequest carries the postings to scan.
type BatchRequest struct {
	Jobs []BatchJob `json:"jobs"`
}

// AnalysisResult is the complete per-posting analysis payload.
type AnalysisResult struct {
	BiasScore          int                                      `json:"bias_score"`
	InternationalScore int                                      `json:"international_student_bias_score"`
	Inclusivity        scoring.InclusivityScore                 `json:"inclusivity_score"`
	RedFlags           []scoring.RedFlag                        `json:"red_flags"`
	KeywordAnalysis    map[match.Category]match.CategoryMatches `json:"keyword_analysis"`
	Classification     ai.Classification                        `json:"classification"`
	SentenceInsights   []ai.SentenceInsight                     `json:"sentence_insights"`
	SentenceCount      int                                      `json:"sentence_count"`
	Breakdown          scoring.InternationalBreakdown           `json:"breakdown"`
	NLPUsed            bool                                     `json:"nlp_used"`
}

// BatchItem is one slot in a batch response. Invalid items carry only the
// id and error; successful items embed the full analysis plus a display
// title derived from the posting's first line.
type BatchItem struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
	*AnalysisResult
}

// BatchResponse preserves the request's job order.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}
