package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/match"
	"biaslens/backend/internal/rewrite"
	"biaslens/backend/internal/scoring"
)

// Config defines server dependencies.
type Config struct {
	PhrasesPath    string
	FlagsPath      string
	RulesPath      string
	AllowedOrigins []string
	BatchLimit     int
	DisableNLP     bool
	Classifier     ai.Config
	OpenAI         rewrite.Config
}

// Server wires HTTP handlers with the matching, scoring, and rewrite
// engines.
type Server struct {
	dictionary     *match.Dictionary
	matcher        *match.Matcher
	engine         *scoring.Engine
	flagTable      *scoring.FlagTable
	ruleTable      *rewrite.RuleTable
	rewriter       *rewrite.Engine
	classifier     ai.Classifier
	keyword        *ai.KeywordClassifier
	batchNotifier  *BatchNotifier
	allowedOrigins []string
	batchLimit     int
	nlpEnabled     bool
	phrasesPath    string
	flagsPath      string
	rulesPath      string
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	phrasesPath := cfg.PhrasesPath
	if phrasesPath == "" {
		phrasesPath = filepath.Join("internal", "match", "bias_phrases.json")
	}
	flagsPath := cfg.FlagsPath
	if flagsPath == "" {
		flagsPath = filepath.Join("internal", "scoring", "red_flags.json")
	}
	rulesPath := cfg.RulesPath
	if rulesPath == "" {
		rulesPath = filepath.Join("internal", "rewrite", "rewrite_rules.json")
	}

	dictionary, err := match.NewDictionary(phrasesPath)
	if err != nil {
		return nil, fmt.Errorf("phrase dictionary: %w", err)
	}
	if err := dictionary.Validate(); err != nil {
		return nil, fmt.Errorf("phrase dictionary: %w", err)
	}
	flagTable, err := scoring.NewFlagTable(flagsPath)
	if err != nil {
		return nil, fmt.Errorf("flag table: %w", err)
	}
	ruleTable, err := rewrite.NewRuleTable(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("rewrite rules: %w", err)
	}

	matcher := match.NewMatcher(dictionary)
	keyword := ai.NewKeywordClassifier(matcher)

	classifier := ai.Classifier(keyword)
	nlpEnabled := false
	if cfg.DisableNLP {
		logrus.Info("zero-shot classifier disabled via configuration")
	} else if zeroShot, err := ai.NewZeroShotClient(cfg.Classifier); err == nil {
		classifier = ai.WithFallback(zeroShot, keyword)
		nlpEnabled = true
		logrus.WithFields(logrus.Fields{
			"model":   cfg.Classifier.Model,
			"timeout": cfg.Classifier.Timeout,
		}).Info("zero-shot classifier enabled")
	} else if errors.Is(err, ai.ErrUnavailable) {
		logrus.Info("zero-shot classifier not configured - keyword inference only")
	} else {
		return nil, fmt.Errorf("zero-shot client: %w", err)
	}

	var generative rewrite.Rewriter
	if openAI, err := rewrite.NewOpenAIRewriter(cfg.OpenAI); err == nil {
		generative = openAI
		logrus.WithField("model", cfg.OpenAI.Model).Info("generative rewrite enabled")
	} else if errors.Is(err, rewrite.ErrNoProvider) {
		logrus.Info("generative rewrite not configured - rule-based only")
	} else {
		return nil, fmt.Errorf("openai rewriter: %w", err)
	}

	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 200
	}

	return &Server{
		dictionary:     dictionary,
		matcher:        matcher,
		engine:         scoring.NewEngine(dictionary),
		flagTable:      flagTable,
		ruleTable:      ruleTable,
		rewriter:       rewrite.NewEngine(ruleTable, generative),
		classifier:     classifier,
		keyword:        keyword,
		batchNotifier:  NewBatchNotifier(),
		allowedOrigins: cfg.AllowedOrigins,
		batchLimit:     batchLimit,
		nlpEnabled:     nlpEnabled,
		phrasesPath:    phrasesPath,
		flagsPath:      flagsPath,
		rulesPath:      rulesPath,
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/analyze/keywords", s.handleAnalyzeKeywords)
		api.POST("/analyze/classifier", s.handleAnalyzeClassifier)
		api.POST("/analyze/full", s.handleAnalyzeFull)
		api.POST("/analyze/batch", s.handleAnalyzeBatch)
		api.GET("/analyze/stream", s.handleAnalyzeStream)
		api.POST("/rewrite", s.handleRewrite)
		api.GET("/config", s.handleConfig)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "BiasLens API"})
}

func (s *Server) handleConfig(c *gin.Context) {
	phraseCount := 0
	for _, cat := range s.dictionary.Categories() {
		phraseCount += len(s.dictionary.Phrases(cat))
	}

	c.JSON(http.StatusOK, gin.H{
		"phrases_path":  s.phrasesPath,
		"flags_path":    s.flagsPath,
		"rules_path":    s.rulesPath,
		"categories":    len(s.dictionary.Categories()),
		"phrases":       phraseCount,
		"rewrite_rules": s.ruleTable.Len(),
		"batch_limit":   s.batchLimit,
		"nlp_enabled":   s.nlpEnabled,
	})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
