// Package openrouter implements domain.AIClient against the OpenRouter
// chat-completions API.
package openrouter

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

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

const provider = "openrouter"

// Client implements domain.AIClient using OpenRouter.
type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
	retry   config.RetryConfig
	catalog *modelCatalog
}

// New constructs the client. It fails with domain.ErrAIUnavailable when no
// API key is configured.
func New(cfg config.Config) (*Client, error) {
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("op=openrouter.New: %w", domain.ErrAIUnavailable)
	}
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "openrouter " + r.Method + " " + r.URL.Path
		}))
	c := &Client{
		hc:      &http.Client{Transport: transport},
		baseURL: strings.TrimRight(cfg.OpenRouterBaseURL, "/"),
		apiKey:  cfg.OpenRouterAPIKey,
		model:   cfg.OpenRouterModel,
		referer: cfg.OpenRouterReferer,
		title:   cfg.OpenRouterTitle,
		retry:   cfg.GetRetryConfig(),
	}
	if strings.EqualFold(c.model, ModelFree) {
		c.catalog = &modelCatalog{hc: c.hc, baseURL: c.baseURL, apiKey: c.apiKey}
	}
	return c, nil
}

// resolveModel returns the configured model, or a free one from the catalog.
func (c *Client) resolveModel(ctx context.Context) (string, error) {
	if c.catalog == nil {
		return c.model, nil
	}
	return c.catalog.Pick(ctx)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements domain.AIClient with a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	lg := observability.LoggerFromContext(ctx)
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Generate: %w", err)
	}
	b, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Generate: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"

	var out chatResponse
	err = ai.Retry(ctx, c.retry, func(ctx context.Context) error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		if c.referer != "" {
			r.Header.Set("HTTP-Referer", c.referer)
		}
		if c.title != "" {
			r.Header.Set("X-Title", c.title)
		}
		resp, err := c.hc.Do(r)
		if err != nil {
			observability.ObserveAICall(provider, time.Since(start), err)
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		observability.ObserveAICall(provider, time.Since(start), statusErr(resp.StatusCode, err))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lg.Warn("ai provider rate limited", slog.String("provider", provider), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("%w: status 429", domain.ErrUpstreamRateLimit)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			lg.Warn("ai provider 4xx", slog.String("provider", provider), slog.Int("status", resp.StatusCode),
				slog.String("model", model), slog.String("body", ai.SnippetOf(body, 512)))
			return backoff.Permanent(fmt.Errorf("%w: chat status %d", domain.ErrInvalidArgument, resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			lg.Error("ai provider non-2xx", slog.String("provider", provider), slog.Int("status", resp.StatusCode),
				slog.String("body", ai.SnippetOf(body, 512)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode chat response: %w", err))
		}
		return nil
	})
	if err != nil {
		lg.Error("openrouter generate failed", slog.String("provider", provider), slog.Any("error", err))
		return "", fmt.Errorf("op=openrouter.Generate: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=openrouter.Generate: %w", errors.New("empty choices"))
	}
	if out.Model != "" && out.Model != model {
		lg.Debug("model substitution detected", slog.String("requested_model", model), slog.String("actual_model", out.Model))
	}
	return out.Choices[0].Message.Content, nil
}

func statusErr(status int, readErr error) error {
	if readErr != nil {
		return readErr
	}
	if status >= 300 {
		return fmt.Errorf("status %d", status)
	}
	return nil
}
