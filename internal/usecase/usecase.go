// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// Fallback reasons recorded in metrics and logs.
const (
	reasonUnavailable  = "ai_unavailable"
	reasonTransport    = "transport"
	reasonParse        = "parse"
	reasonNoCode       = "no_code"
	reasonShortCircuit = "short_circuit"
	reasonNoSession    = "no_session"
)

// ReadinessCheck represents a single readiness probe result used by handlers.
type ReadinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details"`
}

func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// publish emits evt when a publisher is wired. Failures are logged only.
func publish(ctx context.Context, pub domain.EventPublisher, evt domain.Event) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, evt)
	observability.RecordEventPublished(evt.Type, err)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("event publish failed",
			slog.String("type", evt.Type),
			slog.String("key", evt.Key),
			slog.Any("error", err))
	}
}
