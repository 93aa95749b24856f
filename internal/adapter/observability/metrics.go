package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"provider"},
	)
	AIPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_prompt_tokens",
			Help:    "Estimated prompt size in tokens",
			Buckets: prometheus.ExponentialBuckets(64, 2, 8),
		},
		[]string{"operation"},
	)

	// FallbackTotal counts responses served from static or heuristic content.
	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_responses_total",
			Help: "Responses produced without a usable AI answer",
		},
		[]string{"operation", "reason"},
	)

	PracticeScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_evaluation_score",
			Help:    "Distribution of practice evaluation scores ([0,100])",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"language"},
	)
	InterviewScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_overall_score",
			Help:    "Distribution of interview overall scores ([0,100])",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"source"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events handed to the broker",
		},
		[]string{"type", "status"},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AIPromptTokens,
			FallbackTotal,
			PracticeScoreHistogram,
			InterviewScoreHistogram,
			EventsPublishedTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAICall records one provider round trip.
func ObserveAICall(provider string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AIRequestsTotal.WithLabelValues(provider, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObservePromptTokens records the estimated token count of a prompt.
func ObservePromptTokens(operation string, tokens int) {
	if tokens > 0 {
		AIPromptTokens.WithLabelValues(operation).Observe(float64(tokens))
	}
}

// RecordFallback counts a response that did not come from the model.
func RecordFallback(operation, reason string) {
	FallbackTotal.WithLabelValues(operation, reason).Inc()
}

// ObservePracticeScore records a practice evaluation score.
func ObservePracticeScore(language string, score int) {
	if score >= 0 && score <= 100 {
		PracticeScoreHistogram.WithLabelValues(language).Observe(float64(score))
	}
}

// ObserveInterviewScore records an interview overall score; source is ai, heuristic or static.
func ObserveInterviewScore(source string, score int) {
	if score >= 0 && score <= 100 {
		InterviewScoreHistogram.WithLabelValues(source).Observe(float64(score))
	}
}

// RecordEventPublished counts a publish attempt by event type.
func RecordEventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
