package httpserver

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

const (
	// UserIDHeader carries the caller identity used for persistence.
	UserIDHeader = "X-User-Id"
	// RequestIDHeader is read from the caller and echoed on every response.
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLen = 64
)

// Recoverer turns a handler panic into a 500 envelope and logs the stack.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				LoggerFrom(r).Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())))
				writeError(w, r, domain.ErrInternal, nil)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID keeps a sane incoming X-Request-Id or mints a ULID, and puts a
// logger carrying it and the trace ids into the request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if !acceptableRequestID(reqID) {
				reqID = newReqID()
				r.Header.Set(RequestIDHeader, reqID)
			}
			sc := trace.SpanContextFromContext(r.Context())
			lg := slog.Default().With(
				slog.String("request_id", reqID),
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
			ctx := observability.ContextWithRequestID(observability.ContextWithLogger(r.Context(), lg), reqID)
			w.Header().Set(RequestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

func newReqID() string { return ulid.Make().String() }

// UserID stores the trimmed X-User-Id header in the context and on the
// request logger. Requests without it stay anonymous.
func UserID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if uid == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := observability.ContextWithUserID(r.Context(), uid)
			ctx = observability.ContextWithLogger(ctx, LoggerFrom(r).With(slog.String("user_id", uid)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFrom(r *http.Request) string {
	return observability.UserIDFromContext(r.Context())
}

// LoggerFrom returns the request-scoped logger, or the default one.
func LoggerFrom(r *http.Request) *slog.Logger {
	return observability.LoggerFromContext(r.Context())
}

// TimeoutMiddleware bounds the whole request. A slow AI call ends in 503.
func TimeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}

// SecurityHeaders sets the headers a JSON-only API needs. HSTS is left to the edge.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// AccessLog writes one http_access line per request; the level follows the status.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("route", routeLabel(r)),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}
			if uid := userIDFrom(r); uid != "" {
				attrs = append(attrs, slog.String("user_id", uid))
			}
			LoggerFrom(r).LogAttrs(r.Context(), accessLevel(status), "http_access", attrs...)
		})
	}
}

// routeLabel prefers the chi pattern so ids do not explode log cardinality.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
