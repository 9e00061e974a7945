package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/util"
)

// Config drives the zero-shot classifier client. Endpoint is the base
// inference URL; the model identifier is appended as the request path.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
	MaxChars int
}

// ZeroShotClient calls an external zero-shot classification endpoint with
// result caching and a single cold-start retry. The remote model loads
// lazily on first use, so early calls may be slow or time out; callers
// are expected to degrade to the keyword fallback in that case.
type ZeroShotClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	cacheTTL   time.Duration
	maxChars   int
	cache      sync.Map // map[string]cacheEntry
	warmup     sync.Once
}

type cacheEntry struct {
	at     time.Time
	result Classification
}

// NewZeroShotClient constructs a client if the configuration names an
// endpoint or carries credentials for the default one.
func NewZeroShotClient(cfg Config) (*ZeroShotClient, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	apiKey := strings.TrimSpace(cfg.APIKey)
	if endpoint == "" && apiKey == "" {
		return nil, ErrUnavailable
	}
	if endpoint == "" {
		endpoint = "https://api-inference.huggingface.co/models"
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "facebook/bart-large-mnli"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 500
	}

	return &ZeroShotClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		cacheTTL:   ttl,
		maxChars:   maxChars,
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *ZeroShotClient) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Classify labels the text against the candidate label set.
func (c *ZeroShotClient) Classify(ctx context.Context, text string) (Classification, error) {
	if c == nil || !c.Enabled() {
		return Classification{}, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return Classification{
			Labels:   []string{LabelNeutral},
			Scores:   []float64{1.0},
			Provider: c.model,
		}, nil
	}

	c.warmup.Do(func() {
		logrus.WithField("model", c.model).Info("zero-shot classifier first call, remote model may need warmup")
	})

	input := truncateRunes(text, c.maxChars)
	if entry, ok := c.cache.Load(input); ok {
		cached := entry.(cacheEntry)
		if time.Since(cached.at) < c.cacheTTL {
			return cached.result, nil
		}
		c.cache.Delete(input)
	}

	timer := util.StartTimer()
	result, err := c.performRequest(ctx, input)
	if err != nil {
		return Classification{}, err
	}
	result.LatencyMS = timer.ElapsedMs()
	result.Provider = c.model
	result.CalibratedScores = Calibrate(result.Labels, result.Scores)

	c.cache.Store(input, cacheEntry{at: time.Now(), result: result})
	return result, nil
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    zeroShotOptions    `json:"options"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Error  string    `json:"error"`
}

func (c *ZeroShotClient) performRequest(ctx context.Context, text string) (Classification, error) {
	payload := zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: CandidateLabels},
		Options:    zeroShotOptions{WaitForModel: true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.endpoint + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		// model cold start; wait briefly and retry once
		select {
		case <-ctx.Done():
			return Classification{}, ctx.Err()
		case <-time.After(2 * time.Second):
		}
		resp.Body.Close()
		retryReq, retryErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if retryErr != nil {
			return Classification{}, retryErr
		}
		retryReq.Header = req.Header.Clone()
		resp, err = c.httpClient.Do(retryReq)
		if err != nil {
			return Classification{}, fmt.Errorf("classifier retry: %w", err)
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return Classification{}, fmt.Errorf("classifier status %d: %v", resp.StatusCode, apiErr)
	}

	var decoded zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Classification{}, fmt.Errorf("decode classifier response: %w", err)
	}
	if decoded.Error != "" {
		return Classification{}, fmt.Errorf("classifier error: %s", decoded.Error)
	}
	if len(decoded.Labels) == 0 || len(decoded.Labels) != len(decoded.Scores) {
		return Classification{}, errors.New("classifier returned malformed labels")
	}

	return Classification{Labels: decoded.Labels, Scores: decoded.Scores}, nil
}

func truncateRunes(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
