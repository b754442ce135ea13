package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"academiqa-backend/internal/config"
	"academiqa-backend/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// LLM is the language model invoked with a fully formatted prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaClient talks to an Ollama server through its OpenAI-compatible
// API. Calls go through a circuit breaker and a client-side rate limiter
// so a degraded model server cannot pile up blocked requests.
type OllamaClient struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type rateLimits struct {
	RPM int // Requests per minute
}

func NewOllamaClient(cfg *config.Config) *OllamaClient {
	clientCfg := openai.DefaultConfig("ollama") // Ollama ignores the key
	clientCfg.BaseURL = strings.TrimRight(cfg.OllamaHost, "/") + "/v1"

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OllamaAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	limits := getRateLimits(cfg.OllamaAPITier)
	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10+1)

	timeout := time.Duration(cfg.OllamaTimeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OllamaClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.OllamaModel,
		timeout:     timeout,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}
}

// breakerRejected reports whether the breaker itself refused the call:
// open state, or half-open with its request budget already consumed.
func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func getRateLimits(tier string) rateLimits {
	switch tier {
	case "free":
		return rateLimits{RPM: 60}
	case "tier1":
		return rateLimits{RPM: 600}
	default:
		return rateLimits{RPM: 60}
	}
}

// Generate invokes the model with a bounded wait. The configured timeout
// (default 120s) caps the call; cancellation of the server-side generation
// is not guaranteed once the request is in flight.
func (oc *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("ollama-client")
	ctx, span := tracer.Start(ctx, "ollama.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ollama.model", oc.model),
		attribute.Int("ollama.prompt_chars", len(prompt)),
	)

	if err := oc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("ollama.rate_limited", true))
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, oc.timeout)
	defer cancel()

	result, err := oc.breaker.Execute(func() (interface{}, error) {
		resp, err := oc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: oc.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			span.SetAttributes(attribute.String("ollama.error_message", err.Error()))
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		if breakerRejected(err) {
			span.SetAttributes(attribute.Bool("ollama.circuit_breaker_open", true))
			return "", fmt.Errorf("model serving temporarily unavailable: %w", err)
		}
		span.SetAttributes(attribute.Bool("ollama.error", true))
		return "", err
	}

	span.SetAttributes(attribute.Bool("ollama.success", true))
	return result.(string), nil
}
