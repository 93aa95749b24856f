// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// AI provider names accepted by AI_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	AIProvider   string `env:"AI_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey string `env:"GOOGLE_GENERATIVE_AI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" envDefault:"google/gemini-2.5-flash"`
	OpenRouterReferer string `env:"OPENROUTER_REFERER"`
	OpenRouterTitle   string `env:"OPENROUTER_TITLE" envDefault:"Prepio"`

	// AICallTimeout bounds a single AI call; zero leaves the call unbounded
	// apart from the HTTP request timeout.
	AICallTimeout time.Duration `env:"AI_CALL_TIMEOUT" envDefault:"0s"`
	// AIMaxRetries is the number of extra attempts after the first one.
	AIMaxRetries             int           `env:"AI_MAX_RETRIES" envDefault:"0"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"10s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
	// AIQuotaPerMin caps AI calls across replicas through Redis; 0 disables it.
	AIQuotaPerMin int `env:"AI_QUOTA_PER_MIN" envDefault:"0"`
	// PromptMaxTokens caps each user-supplied text embedded in a prompt.
	PromptMaxTokens int    `env:"PROMPT_MAX_TOKENS" envDefault:"2000"`
	TokenizerModel  string `env:"TOKENIZER_MODEL" envDefault:"gemini"`

	// DBURL enables persistence when set. Empty disables progress tracking.
	DBURL             string        `env:"DB_URL"`
	DataRetentionDays int           `env:"DATA_RETENTION_DAYS" envDefault:"0"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	// RedisURL enables the shared AI quota and the Redis session store.
	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicEvents string   `env:"KAFKA_TOPIC_EVENTS" envDefault:"prepio-events"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"prepio-api"`

	HeuristicsConfig              string `env:"HEURISTICS_CONFIG"`
	PracticeShortCircuitIdentical bool   `env:"PRACTICE_SHORT_CIRCUIT_IDENTICAL" envDefault:"true"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderOpenRouter {
		return Config{}, fmt.Errorf("op=config.Load: unknown AI_PROVIDER %q", cfg.AIProvider)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// AIConfigured reports whether the selected provider has credentials.
func (c Config) AIConfigured() bool {
	switch c.AIProvider {
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey != ""
	default:
		return c.GoogleAPIKey != ""
	}
}

// PersistenceEnabled reports whether a database is configured.
func (c Config) PersistenceEnabled() bool { return strings.TrimSpace(c.DBURL) != "" }

// RedisEnabled reports whether a Redis server is configured.
func (c Config) RedisEnabled() bool { return strings.TrimSpace(c.RedisURL) != "" }

// EventsEnabled reports whether evaluation events should be published.
func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }
