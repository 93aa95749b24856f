package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/service/ratelimiter"
)

// Retry runs call under rc. The first attempt always happens; MaxRetries
// adds attempts on retryable errors. Wrap an error with backoff.Permanent to
// stop early. CallTimeout, when set, bounds every attempt separately.
func Retry(ctx context.Context, rc config.RetryConfig, call func(ctx context.Context) error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = rc.InitialDelay
	expo.MaxInterval = rc.MaxDelay
	if rc.Multiplier > 0 {
		expo.Multiplier = rc.Multiplier
	}
	expo.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(rc.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if rc.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, rc.CallTimeout)
		}
		defer cancel()
		err := call(callCtx)
		if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: attempt %d: %v", domain.ErrUpstreamTimeout, attempt, err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		observability.LoggerFromContext(ctx).Warn("ai call failed; retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}
	return backoff.RetryNotify(op, bo, notify)
}

// QuotaGuard consults a shared token bucket before each call and skips the
// provider when the bucket is empty. Callers then take their fallback path.
type QuotaGuard struct {
	next    domain.AIClient
	limiter ratelimiter.Limiter
	key     string
}

// NewQuotaGuard wraps next. A nil limiter returns next unchanged.
func NewQuotaGuard(next domain.AIClient, limiter ratelimiter.Limiter, key string) domain.AIClient {
	if limiter == nil || next == nil {
		return next
	}
	return &QuotaGuard{next: next, limiter: limiter, key: key}
}

// Generate implements domain.AIClient.
func (g *QuotaGuard) Generate(ctx context.Context, prompt string) (string, error) {
	d, err := g.limiter.Take(ctx, g.key)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("ai quota check failed; allowing call", slog.Any("error", err))
		return g.next.Generate(ctx, prompt)
	}
	if !d.Allowed {
		observability.LoggerFromContext(ctx).Info("ai quota exhausted; skipping provider",
			slog.String("bucket", g.key),
			slog.Duration("retry_after", d.RetryAfter))
		return "", fmt.Errorf("op=ai.QuotaGuard: %w: retry after %s", domain.ErrUpstreamRateLimit, d.RetryAfter)
	}
	return g.next.Generate(ctx, prompt)
}

// SnippetOf shortens provider bodies for logs.
func SnippetOf(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
