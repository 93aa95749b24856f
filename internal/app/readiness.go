package app

import (
	"context"
	"fmt"
)

// Pinger is the minimal interface for a database pool or broker client capable of Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPingResult is the minimal return type of a Redis client's Ping.
type RedisPingResult interface {
	Err() error
}

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) RedisPingResult
}

// ReadinessChecks holds one probe per optional backend. A nil probe means
// the backend is not configured and is left out of /readyz.
type ReadinessChecks struct {
	DB    func(ctx context.Context) error
	Redis func(ctx context.Context) error
	Kafka func(ctx context.Context) error
}

// BuildReadinessChecks returns probes for the configured backends only.
func BuildReadinessChecks(pool Pinger, rdb RedisClient, broker Pinger) ReadinessChecks {
	var rc ReadinessChecks
	if pool != nil {
		rc.DB = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("db: %w", err)
			}
			return nil
		}
	}
	if rdb != nil {
		rc.Redis = func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}
	}
	if broker != nil {
		rc.Kafka = func(ctx context.Context) error {
			if err := broker.Ping(ctx); err != nil {
				return fmt.Errorf("kafka: %w", err)
			}
			return nil
		}
	}
	return rc
}
