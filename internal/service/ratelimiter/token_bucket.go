// Package ratelimiter keeps the AI provider quota in a Redis token bucket
// so every API replica draws from the same budget.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Remaining  float64
	RetryAfter time.Duration
}

// Limiter hands out one unit of quota per call.
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
}

// Quota sizes one bucket. A zero Quota means unlimited.
type Quota struct {
	Burst     int64
	PerSecond float64
}

func (q Quota) unlimited() bool { return q.Burst <= 0 || q.PerSecond <= 0 }

// PerMinute allows n calls a minute with a burst of n.
func PerMinute(n int) Quota {
	if n <= 0 {
		return Quota{}
	}
	return Quota{Burst: int64(n), PerSecond: float64(n) / 60}
}

// BucketState is the durable snapshot of one bucket.
type BucketState struct {
	Key        string
	Capacity   int64
	RefillRate float64
	Tokens     float64
	LastRefill time.Time
}

// BucketMirror stores snapshots outside Redis, so a flushed Redis does not
// grant a fresh burst.
type BucketMirror interface {
	SaveBucket(ctx context.Context, st BucketState) error
	LoadBuckets(ctx context.Context) ([]BucketState, error)
}

// TokenBucket is a Redis-backed Limiter.
type TokenBucket struct {
	rdb    *redis.Client
	mirror BucketMirror
	take   *redis.Script
	now    func() time.Time

	mu     sync.RWMutex
	quotas map[string]Quota
}

// NewTokenBucket returns nil when rdb is nil. Calls on a nil *TokenBucket
// always allow.
func NewTokenBucket(rdb *redis.Client, mirror BucketMirror) *TokenBucket {
	if rdb == nil {
		return nil
	}
	return &TokenBucket{
		rdb:    rdb,
		mirror: mirror,
		take:   redis.NewScript(takeScript),
		now:    time.Now,
		quotas: map[string]Quota{},
	}
}

// KEYS[1] bucket hash; ARGV burst, tokens/sec, now in ms.
// Tokens go back as a string so fractions survive the Lua to Redis reply.
const takeScript = `
local burst = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now_ms = tonumber(ARGV[3])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts_ms")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now_ms
local elapsed = math.max(0, now_ms - ts)

tokens = math.min(burst, tokens + elapsed * rate / 1000)
local ok = 0
if tokens >= 1 then
  tokens = tokens - 1
  ok = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts_ms", tostring(now_ms))
redis.call("EXPIRE", KEYS[1], 86400)
return { ok, tostring(tokens) }
`

func bucketKey(key string) string { return "prepio:quota:" + key }

// Configure sets the quota for key, replacing any previous one.
func (b *TokenBucket) Configure(key string, q Quota) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.quotas[key] = q
	b.mu.Unlock()
}

func (b *TokenBucket) quota(key string) Quota {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.quotas[key]
}

// Take consumes one token from key. Unknown keys and Redis failures allow
// the call; the error is still returned so callers can log it.
func (b *TokenBucket) Take(ctx context.Context, key string) (Decision, error) {
	if b == nil {
		return Decision{Allowed: true}, nil
	}
	q := b.quota(key)
	if q.unlimited() {
		return Decision{Allowed: true}, nil
	}

	now := b.now()
	res, err := b.take.Run(ctx, b.rdb, []string{bucketKey(key)}, q.Burst, q.PerSecond, now.UnixMilli()).Slice()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("op=ratelimiter.Take: %w", err)
	}
	if len(res) != 2 {
		slog.Error("quota script returned unexpected reply", slog.String("key", key), slog.Any("reply", res))
		return Decision{Allowed: true}, nil
	}
	ok, _ := number(res[0])
	tokens, valid := number(res[1])
	if !valid {
		return Decision{Allowed: ok == 1}, nil
	}

	d := Decision{Allowed: ok == 1, Remaining: tokens}
	if !d.Allowed {
		ms := math.Round((1 - tokens) / q.PerSecond * 1000)
		d.RetryAfter = time.Duration(ms) * time.Millisecond
	}
	b.snapshot(ctx, BucketState{
		Key:        key,
		Capacity:   q.Burst,
		RefillRate: q.PerSecond,
		Tokens:     tokens,
		LastRefill: time.UnixMilli(now.UnixMilli()),
	})
	return d, nil
}

func (b *TokenBucket) snapshot(ctx context.Context, st BucketState) {
	if b.mirror == nil {
		return
	}
	if err := b.mirror.SaveBucket(ctx, st); err != nil {
		slog.Warn("quota snapshot not saved", slog.String("key", st.Key), slog.Any("error", err))
	}
}

// WarmFromMirror copies the last saved snapshots back into Redis. Run it
// once at startup, before serving traffic.
func (b *TokenBucket) WarmFromMirror(ctx context.Context) error {
	if b == nil || b.mirror == nil {
		return nil
	}
	states, err := b.mirror.LoadBuckets(ctx)
	if err != nil {
		return fmt.Errorf("op=ratelimiter.WarmFromMirror: %w", err)
	}
	for _, st := range states {
		err := b.rdb.HSet(ctx, bucketKey(st.Key),
			"tokens", strconv.FormatFloat(st.Tokens, 'f', -1, 64),
			"ts_ms", strconv.FormatInt(st.LastRefill.UnixMilli(), 10)).Err()
		if err != nil {
			slog.Error("quota bucket not restored", slog.String("key", st.Key), slog.Any("error", err))
		}
	}
	return nil
}

// number reads a Lua reply element, which arrives as int64 or string.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}
