package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/match"
	"biaslens/backend/internal/rewrite"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.PhrasesPath == "" {
		cfg.PhrasesPath = filepath.Join("..", "match", "bias_phrases.json")
	}
	if cfg.FlagsPath == "" {
		cfg.FlagsPath = filepath.Join("..", "scoring", "red_flags.json")
	}
	if cfg.RulesPath == "" {
		cfg.RulesPath = filepath.Join("..", "rewrite", "rewrite_rules.json")
	}
	cfg.DisableNLP = true
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func newTestRouter(t *testing.T, cfg Config) (*Server, *gin.Engine) {
	t.Helper()
	srv := newTestServer(t, cfg)
	router, err := srv.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return srv, router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy got %q", body["status"])
	}
	if body["service"] != "BiasLens API" {
		t.Fatalf("unexpected service name %q", body["service"])
	}
}

func TestConfigEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if got := body["categories"].(float64); got != 7 {
		t.Fatalf("expected 7 categories got %v", got)
	}
	if got := body["phrases"].(float64); got <= 0 {
		t.Fatalf("expected phrases > 0 got %v", got)
	}
	if got := body["rewrite_rules"].(float64); got <= 0 {
		t.Fatalf("expected rewrite rules > 0 got %v", got)
	}
	if got := body["batch_limit"].(float64); got != 200 {
		t.Fatalf("expected default batch limit 200 got %v", got)
	}
	if enabled := body["nlp_enabled"].(bool); enabled {
		t.Fatal("expected nlp disabled in test config")
	}
}

func TestAnalyzeRejectsBlankText(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	endpoints := []string{
		"/api/analyze/keywords",
		"/api/analyze/classifier",
		"/api/analyze/full",
		"/api/rewrite",
	}
	for _, endpoint := range endpoints {
		t.Run(endpoint, func(t *testing.T) {
			rec := postJSON(t, router, endpoint, map[string]string{"text": "   "})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected %d got %d", http.StatusBadRequest, rec.Code)
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] == "" {
				t.Fatal("expected error message in response")
			}
		})
	}
}

func TestAnalyzeKeywordsEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	rec := postJSON(t, router, "/api/analyze/keywords", TextInput{Text: "We want a rockstar ninja."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var categories map[match.Category]match.CategoryMatches
	decodeBody(t, rec, &categories)
	if len(categories) != 7 {
		t.Fatalf("expected 7 categories got %d", len(categories))
	}
	masc := categories[match.CategoryMasculine]
	if masc.Count != 2 {
		t.Fatalf("expected 2 masculine matches got %d", masc.Count)
	}
	if masc.Matches[0] != "rockstar" || masc.Matches[1] != "ninja" {
		t.Fatalf("unexpected matches %v", masc.Matches)
	}
	if categories[match.CategoryExclusionary].Count != 0 {
		t.Fatalf("expected no exclusionary matches got %d", categories[match.CategoryExclusionary].Count)
	}
}

func TestClassifierEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	rec := postJSON(t, router, "/api/analyze/classifier", TextInput{Text: "Our young energetic team moves fast."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var classification ai.Classification
	decodeBody(t, rec, &classification)
	if classification.Provider != ai.ProviderKeywordFallback {
		t.Fatalf("expected keyword provider got %q", classification.Provider)
	}
	if !classification.Fallback {
		t.Fatal("expected fallback classification")
	}
	if classification.TopLabel() != ai.LabelAgeBias {
		t.Fatalf("expected top label %q got %q", ai.LabelAgeBias, classification.TopLabel())
	}
}

func TestRewriteEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	rec := postJSON(t, router, "/api/rewrite", TextInput{Text: "We need a rockstar developer"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var result rewrite.Result
	decodeBody(t, rec, &result)
	if result.RewrittenText != "We need a skilled professional developer" {
		t.Fatalf("unexpected rewrite %q", result.RewrittenText)
	}
	if result.Provider != rewrite.ProviderRules {
		t.Fatalf("expected rules provider got %q", result.Provider)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change got %d", len(result.Changes))
	}
}

func TestAnalyzeFullEndpoint(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	text := "We need a rockstar developer. Native English speaker required. No visa sponsorship available."
	rec := postJSON(t, router, "/api/analyze/full", TextInput{Text: text})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var res AnalysisResult
	decodeBody(t, rec, &res)

	if res.BiasScore <= 0 {
		t.Fatalf("expected positive bias score got %d", res.BiasScore)
	}
	if res.InternationalScore <= 0 {
		t.Fatalf("expected positive international score got %d", res.InternationalScore)
	}
	if len(res.KeywordAnalysis) != 7 {
		t.Fatalf("expected 7 categories got %d", len(res.KeywordAnalysis))
	}

	excl := res.KeywordAnalysis[match.CategoryExclusionary]
	if excl.Count != 2 {
		t.Fatalf("expected 2 exclusionary matches got %d: %v", excl.Count, excl.Matches)
	}
	masc := res.KeywordAnalysis[match.CategoryMasculine]
	if masc.Count != 1 || masc.Matches[0] != "rockstar" {
		t.Fatalf("unexpected masculine matches %v", masc.Matches)
	}

	if len(res.RedFlags) == 0 {
		t.Fatal("expected red flags")
	}
	if res.RedFlags[0].Severity != "high" {
		t.Fatalf("expected high severity flag first got %q", res.RedFlags[0].Severity)
	}

	if res.NLPUsed {
		t.Fatal("expected keyword analysis only")
	}
	if !res.Classification.Fallback {
		t.Fatal("expected fallback classification")
	}
	if res.Classification.TopLabel() != ai.LabelExclusionary {
		t.Fatalf("expected top label %q got %q", ai.LabelExclusionary, res.Classification.TopLabel())
	}

	if res.SentenceCount != 3 {
		t.Fatalf("expected 3 sentences got %d", res.SentenceCount)
	}
	if len(res.SentenceInsights) != 3 {
		t.Fatalf("expected 3 insights got %d", len(res.SentenceInsights))
	}

	if res.Breakdown.VisaRequirements != 1 {
		t.Fatalf("expected 1 visa issue got %d", res.Breakdown.VisaRequirements)
	}
	if res.Breakdown.LanguageBias != 1 {
		t.Fatalf("expected 1 language issue got %d", res.Breakdown.LanguageBias)
	}

	if res.Inclusivity.Overall != float64(100-res.BiasScore) {
		t.Fatalf("inclusivity %v does not mirror bias score %d", res.Inclusivity.Overall, res.BiasScore)
	}
	if res.Inclusivity.Interpretation == "" {
		t.Fatal("expected inclusivity interpretation")
	}
}

func TestAnalyzeFullCleanPosting(t *testing.T) {
	_, router := newTestRouter(t, Config{})

	rec := postJSON(t, router, "/api/analyze/full", TextInput{Text: "We welcome applicants from all backgrounds."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if got := body["bias_score"].(float64); got != 0 {
		t.Fatalf("expected bias 0 got %v", got)
	}
	flags, ok := body["red_flags"].([]any)
	if !ok {
		t.Fatalf("expected red_flags array got %T", body["red_flags"])
	}
	if len(flags) != 0 {
		t.Fatalf("expected no flags got %d", len(flags))
	}
	insights, ok := body["sentence_insights"].([]any)
	if !ok {
		t.Fatalf("expected sentence_insights array got %T", body["sentence_insights"])
	}
	if len(insights) != 0 {
		t.Fatalf("expected no insights got %d", len(insights))
	}

	var res AnalysisResult
	decodeBody(t, rec, &res)
	if res.Inclusivity.Overall != 100 {
		t.Fatalf("expected overall 100 got %v", res.Inclusivity.Overall)
	}
	if res.Inclusivity.Interpretation != "Highly Inclusive" {
		t.Fatalf("unexpected interpretation %q", res.Inclusivity.Interpretation)
	}
}
