package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"event-scraper/internal/observability/metrics"
	"event-scraper/internal/resilience/circuitbreaker"
	"event-scraper/internal/resilience/retry"
)

// OpenAI calls the Chat Completions API as a hosted fallback provider.
type OpenAI struct {
	client         *openai.Client
	model          string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewOpenAI creates an OpenAI client with the given API key and default model.
func NewOpenAI(apiKey, model string, logger *slog.Logger) *OpenAI {
	return &OpenAI{
		client:         openai.NewClient(apiKey),
		model:          model,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		logger:         logger,
	}
}

// Generate produces a completion via the Chat Completions API.
func (o *OpenAI) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var result string
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, prompt, opts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				o.logger.Warn("openai api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})

	metrics.RecordLLMCall(o.Name(), retryErr == nil, time.Since(start))
	if retryErr != nil {
		return "", fmt.Errorf("openai generate failed: %w", retryErr)
	}
	return result, nil
}

func (o *OpenAI) doGenerate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = o.model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(opts.Temperature),
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsAvailable reports whether the client is configured.
func (o *OpenAI) IsAvailable(_ context.Context) bool {
	return true
}

// Name implements Client.
func (o *OpenAI) Name() string {
	return "openai"
}
