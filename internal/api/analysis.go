package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/scoring"
	"biaslens/backend/internal/util"
)

var errTextRequired = errors.New("text is required")

func bindTextInput(c *gin.Context) (TextInput, error) {
	var input TextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return TextInput{}, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return TextInput{}, errTextRequired
	}
	return input, nil
}

func (s *Server) handleAnalyzeKeywords(c *gin.Context) {
	input, err := bindTextInput(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	analysis := s.matcher.Match(input.Text)
	c.JSON(http.StatusOK, analysis.Categories)
}

func (s *Server) handleAnalyzeClassifier(c *gin.Context) {
	input, err := bindTextInput(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	classification, err := s.classifier.Classify(c.Request.Context(), input.Text)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, classification)
}

func (s *Server) handleAnalyzeFull(c *gin.Context) {
	input, err := bindTextInput(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, s.analyze(c.Request.Context(), input.Text, input.UseNLP))
}

func (s *Server) handleRewrite(c *gin.Context) {
	input, err := bindTextInput(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, s.rewriter.Rewrite(c.Request.Context(), input.Text))
}

// analyze runs the full pipeline over a single posting. The zero-shot
// classifier is opt-in per request; the keyword classifier covers every
// other path and never fails.
func (s *Server) analyze(ctx context.Context, text string, useNLP bool) AnalysisResult {
	timer := util.StartTimer()

	analysis := s.matcher.Match(text)

	clf := ai.Classifier(s.keyword)
	if useNLP {
		clf = s.classifier
	}
	classification, err := clf.Classify(ctx, text)
	if err != nil {
		classification, _ = s.keyword.Classify(ctx, text)
	}
	insights, sentenceCount, err := ai.ClassifySentences(ctx, clf, text)
	if err != nil {
		insights, sentenceCount = []ai.SentenceInsight{}, 0
	}

	biasScore := s.engine.BiasScore(analysis, classification)
	flags := s.flagTable.Flags(analysis)
	if flags == nil {
		flags = []scoring.RedFlag{}
	}

	result := AnalysisResult{
		BiasScore:          biasScore,
		InternationalScore: s.engine.InternationalScore(analysis),
		Inclusivity:        s.engine.Inclusivity(analysis, biasScore),
		RedFlags:           flags,
		KeywordAnalysis:    analysis.Categories,
		Classification:     classification,
		SentenceInsights:   insights,
		SentenceCount:      sentenceCount,
		Breakdown:          s.engine.InternationalBreakdown(analysis),
		NLPUsed:            !classification.Fallback,
	}

	logrus.WithFields(logrus.Fields{
		"chars":      len(text),
		"matches":    analysis.TotalCount(),
		"bias_score": result.BiasScore,
		"intl_score": result.InternationalScore,
		"nlp_used":   result.NLPUsed,
		"elapsed_ms": timer.ElapsedMs(),
	}).Info("analysis complete")

	return result
}
