// Command server starts the Prepio HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai"
	"github.com/fairyhunter13/prepio-api/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/prepio-api/internal/adapter/ai/openrouter"
	httpserver "github.com/fairyhunter13/prepio-api/internal/adapter/httpserver"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/prepio-api/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/prepio-api/internal/adapter/session"
	"github.com/fairyhunter13/prepio-api/internal/app"
	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/prompt"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
	"github.com/fairyhunter13/prepio-api/internal/service/ratelimiter"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

const aiQuotaBucket = "ai:generate"

// redisPinger adapts *redis.Client to app.RedisClient.
type redisPinger struct{ c *redis.Client }

func (r redisPinger) Ping(ctx context.Context) app.RedisPingResult { return r.c.Ping(ctx) }

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	heuristics, err := config.LoadHeuristics(cfg.HeuristicsConfig)
	if err != nil {
		slog.Error("heuristics config invalid", slog.Any("error", err))
		os.Exit(1)
	}

	// Persistence (optional)
	var (
		progressRepo domain.ProgressRepository
		reportRepo   domain.InterviewRepository
		mirror       ratelimiter.BucketMirror
		dbPinger     app.Pinger
	)
	if cfg.PersistenceEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			slog.Error("db schema setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		progressRepo = postgres.NewChallengeRepo(pool)
		reportRepo = postgres.NewInterviewReportRepo(pool)
		mirror = postgres.NewQuotaBucketRepo(pool)
		dbPinger = pool

		if cfg.DataRetentionDays > 0 {
			cleanupSvc := postgres.NewCleanupService(postgres.PoolBeginner{Pool: pool}, cfg.DataRetentionDays)
			go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
			slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
		}
	} else {
		slog.Info("DB_URL not set; progress tracking disabled")
	}

	// Redis (optional): sessions and the shared AI quota
	var (
		rdb      *redis.Client
		sessions domain.SessionStore
		rPinger  app.RedisClient
	)
	if cfg.RedisEnabled() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		rPinger = redisPinger{rdb}
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		slog.Info("REDIS_URL not set; using in-memory session store")
	}

	// Events (optional)
	var (
		events       domain.EventPublisher
		brokerPinger app.Pinger
	)
	if cfg.EventsEnabled() {
		producer, err := redpanda.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopicEvents)
		if err != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = producer.Close() }()
		events = producer
		brokerPinger = producer
	}

	aiClient := buildAIClient(ctx, cfg, rdb, mirror)

	prompts := prompt.New(cfg.TokenizerModel, cfg.PromptMaxTokens)
	practiceSvc := usecase.NewPracticeService(aiClient, prompts, scoring.NewPractice(heuristics.Practice), progressRepo, events)
	practiceSvc.ShortCircuitIdentical = cfg.PracticeShortCircuitIdentical
	interviewSvc := usecase.NewInterviewService(aiClient, prompts, scoring.NewInterview(heuristics), reportRepo, events)
	sessionSvc := usecase.NewSessionService(sessions, interviewSvc)
	progressSvc := usecase.NewProgressService(progressRepo)

	srv := httpserver.NewServer(cfg, practiceSvc, interviewSvc, sessionSvc, progressSvc)
	checks := app.BuildReadinessChecks(dbPinger, rPinger, brokerPinger)
	srv.DBCheck, srv.RedisCheck, srv.KafkaCheck = checks.DB, checks.Redis, checks.Kafka

	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("ai_provider", cfg.AIProvider), slog.Bool("ai_configured", aiClient != nil))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// buildAIClient returns nil when the selected provider has no credentials;
// the services then answer from their fallbacks.
func buildAIClient(ctx context.Context, cfg config.Config, rdb *redis.Client, mirror ratelimiter.BucketMirror) domain.AIClient {
	if !cfg.AIConfigured() {
		slog.Warn("AI provider not configured; serving fallbacks", slog.String("provider", cfg.AIProvider))
		return nil
	}
	var client domain.AIClient
	switch cfg.AIProvider {
	case config.ProviderOpenRouter:
		c, err := openrouter.New(cfg)
		if err != nil {
			slog.Error("openrouter client init failed", slog.Any("error", err))
			return nil
		}
		client = c
	default:
		c, err := gemini.New(ctx, cfg)
		if err != nil {
			slog.Error("gemini client init failed", slog.Any("error", err))
			return nil
		}
		client = c
	}

	if rdb == nil || cfg.AIQuotaPerMin <= 0 {
		return client
	}
	limiter := ratelimiter.NewTokenBucket(rdb, mirror)
	limiter.Configure(aiQuotaBucket, ratelimiter.PerMinute(cfg.AIQuotaPerMin))
	if err := limiter.WarmFromMirror(ctx); err != nil {
		slog.Warn("ai quota warm-up failed", slog.Any("error", err))
	}
	slog.Info("ai quota enabled", slog.Int("per_min", cfg.AIQuotaPerMin))
	return ai.NewQuotaGuard(client, limiter, aiQuotaBucket)
}
