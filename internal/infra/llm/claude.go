package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"event-scraper/internal/observability/metrics"
	"event-scraper/internal/resilience/circuitbreaker"
	"event-scraper/internal/resilience/retry"
)

// Claude calls Anthropic's Messages API. Used as a hosted fallback when the
// local Ollama daemon is down or the operator prefers a hosted provider.
type Claude struct {
	client         anthropic.Client
	model          string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewClaude creates a Claude client with the given API key and default model.
func NewClaude(apiKey, model string, logger *slog.Logger) *Claude {
	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          model,
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		logger:         logger,
	}
}

// Generate produces a completion via the Messages API.
func (c *Claude) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var result string
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx, prompt, opts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				c.logger.Warn("claude api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})

	metrics.RecordLLMCall(c.Name(), retryErr == nil, time.Since(start))
	if retryErr != nil {
		return "", fmt.Errorf("claude generate failed: %w", retryErr)
	}
	return result, nil
}

func (c *Claude) doGenerate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", errors.New("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", errors.New("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}

// IsAvailable reports whether the client is configured. The API has no cheap
// health probe, so configuration presence stands in for reachability.
func (c *Claude) IsAvailable(_ context.Context) bool {
	return true
}

// Name implements Client.
func (c *Claude) Name() string {
	return "claude"
}
