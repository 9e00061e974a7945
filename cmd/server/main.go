package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/api"
	"biaslens/backend/internal/rewrite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	classifierCfg := ai.Config{
		Endpoint: os.Getenv("CLASSIFIER_ENDPOINT"),
		Model:    os.Getenv("CLASSIFIER_MODEL"),
		APIKey:   os.Getenv("CLASSIFIER_API_KEY"),
	}
	if timeout := os.Getenv("CLASSIFIER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			classifierCfg.Timeout = d
		}
	}
	if ttl := os.Getenv("CLASSIFIER_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			classifierCfg.CacheTTL = d
		}
	}
	if maxChars := os.Getenv("CLASSIFIER_MAX_CHARS"); maxChars != "" {
		if v, err := strconv.Atoi(maxChars); err == nil && v > 0 {
			classifierCfg.MaxChars = v
		}
	}

	openAICfg := rewrite.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if temp := os.Getenv("OPENAI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 32); err == nil {
			openAICfg.Temperature = float32(v)
		}
	}
	if maxTokens := os.Getenv("OPENAI_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			openAICfg.MaxTokens = v
		}
	}

	allowedOrigins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
	}
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		allowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	batchLimit := 0
	if v := strings.TrimSpace(os.Getenv("BATCH_LIMIT")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			batchLimit = val
		}
	}

	disableNLP := strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_NLP")), "true")

	cfg := api.Config{
		PhrasesPath:    os.Getenv("BIAS_PHRASES_PATH"),
		FlagsPath:      os.Getenv("RED_FLAGS_PATH"),
		RulesPath:      os.Getenv("REWRITE_RULES_PATH"),
		AllowedOrigins: allowedOrigins,
		BatchLimit:     batchLimit,
		DisableNLP:     disableNLP,
		Classifier:     classifierCfg,
		OpenAI:         openAICfg,
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	logrus.Infof("starting biaslens backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
