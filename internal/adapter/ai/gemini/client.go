// Package gemini implements domain.AIClient on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

const provider = "gemini"

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends single-turn text prompts to a Gemini model.
type Client struct {
	models contentGenerator
	model  string
	retry  config.RetryConfig
}

// New constructs a Gemini client. It fails with domain.ErrAIUnavailable when
// no API key is configured.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("op=gemini.New: %w", domain.ErrAIUnavailable)
	}
	hc := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "gemini " + r.Method
			})),
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GoogleAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	return newWithGenerator(gc.Models, cfg.GeminiModel, cfg.GetRetryConfig()), nil
}

func newWithGenerator(g contentGenerator, model string, rc config.RetryConfig) *Client {
	return &Client{models: g, model: model, retry: rc}
}

// Generate implements domain.AIClient. It returns the concatenated text parts
// of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	lg := observability.LoggerFromContext(ctx)
	var text string
	err := ai.Retry(ctx, c.retry, func(ctx context.Context) error {
		start := time.Now()
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		observability.ObserveAICall(provider, time.Since(start), err)
		if err != nil {
			return classify(err)
		}
		if resp == nil {
			return errors.New("empty response")
		}
		text = resp.Text()
		return nil
	})
	if err != nil {
		lg.Error("gemini generate failed", slog.String("provider", provider), slog.String("model", c.model), slog.Any("error", err))
		return "", fmt.Errorf("op=gemini.Generate: %w", err)
	}
	lg.Debug("gemini generate ok", slog.String("model", c.model), slog.Int("chars", len(text)))
	return text, nil
}

// classify maps SDK errors onto the domain taxonomy. 4xx other than 429 are
// not retried.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRateLimit, apiErr.Message)
	case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, apiErr.Message)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return backoff.Permanent(fmt.Errorf("%w: gemini status %d: %s", domain.ErrInvalidArgument, apiErr.Code, apiErr.Message))
	default:
		return err
	}
}
