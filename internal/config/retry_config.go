package config

import (
	"time"
)

// RetryConfig holds the retry policy applied to AI gateway calls.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one
	MaxRetries int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier
	Multiplier float64
	// CallTimeout bounds one attempt; zero means no per-attempt bound
	CallTimeout time.Duration
}

// GetRetryConfig returns the AI retry policy. Test environments use short delays.
func (c Config) GetRetryConfig() RetryConfig {
	rc := RetryConfig{
		MaxRetries:   c.AIMaxRetries,
		InitialDelay: c.AIBackoffInitialInterval,
		MaxDelay:     c.AIBackoffMaxInterval,
		Multiplier:   c.AIBackoffMultiplier,
		CallTimeout:  c.AICallTimeout,
	}
	if rc.MaxRetries < 0 {
		rc.MaxRetries = 0
	}
	if c.IsTest() {
		rc.InitialDelay = 10 * time.Millisecond
		rc.MaxDelay = 50 * time.Millisecond
	}
	return rc
}
