package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"event-scraper/internal/observability/metrics"
	"event-scraper/internal/resilience/circuitbreaker"
	"event-scraper/internal/resilience/retry"
)

// Ollama calls a local Ollama daemon over its HTTP API.
type Ollama struct {
	baseURL        string
	model          string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewOllama creates an Ollama client. baseURL is typically
// http://localhost:11434; model is the default model name.
func NewOllama(baseURL, model string, logger *slog.Logger) *Ollama {
	return &Ollama{
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		client:         &http.Client{},
		circuitBreaker: circuitbreaker.New(circuitbreaker.OllamaAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		logger:         logger,
	}
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate produces a completion via /api/generate.
func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var result string
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, prompt, opts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				o.logger.Warn("ollama circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("ollama unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})

	metrics.RecordLLMCall(o.Name(), retryErr == nil, time.Since(start))
	if retryErr != nil {
		return "", fmt.Errorf("ollama generate failed: %w", retryErr)
	}
	return result, nil
}

func (o *Ollama) doGenerate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = o.model
	}

	reqBody := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		reqBody.Options["num_predict"] = opts.MaxTokens
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}
	if parsed.Response == "" {
		return "", errors.New("ollama returned empty response")
	}
	return parsed.Response, nil
}

// IsAvailable checks the daemon's /api/tags endpoint with a short deadline.
func (o *Ollama) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode == http.StatusOK
}

// Name implements Client.
func (o *Ollama) Name() string {
	return "ollama"
}
