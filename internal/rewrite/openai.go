package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoProvider is returned when no generative rewrite provider is
// configured.
var ErrNoProvider = errors.New("generative rewriter not configured")

const rewriteSystemPrompt = "You are an expert at rewriting job descriptions to be inclusive and bias-free."

const rewritePromptTemplate = `Rewrite the following job description to be inclusive, neutral, and free of gendered or exclusionary language while keeping the meaning unchanged. Remove any visa restrictions, native speaker requirements, or cultural assumptions. Make it welcoming to international candidates and diverse backgrounds:

%s

Rewritten version:`

// Config drives the OpenAI-backed rewrite path.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// OpenAIRewriter asks a chat model for an inclusive rewrite of the
// posting. Failures are expected to be recovered by the caller with the
// rule-based result.
type OpenAIRewriter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIRewriter constructs a rewriter if an API key is configured.
func NewOpenAIRewriter(cfg Config) (*OpenAIRewriter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNoProvider
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.GPT4
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &OpenAIRewriter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Enabled reports whether the rewriter can make outbound calls.
func (r *OpenAIRewriter) Enabled() bool {
	return r != nil && r.client != nil
}

// Rewrite requests an inclusive rewrite from the chat model.
func (r *OpenAIRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	if !r.Enabled() {
		return "", ErrNoProvider
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rewriteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(rewritePromptTemplate, text)},
		},
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai rewrite: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	rewritten := strings.TrimSpace(resp.Choices[0].Message.Content)
	if rewritten == "" {
		return "", errors.New("openai returned empty rewrite")
	}
	return rewritten, nil
}
