// Package session stores interview sessions between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a Redis-backed store. A non-positive ttl uses DefaultTTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "interview:session:"}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Get loads the session id, or domain.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (domain.InterviewSession, error) {
	ctx, span := otel.Tracer("session.redis").Start(ctx, "sessions.Get")
	defer span.End()
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	var sess domain.InterviewSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get_decode: %w", err)
	}
	return sess, nil
}

// Put stores sess and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, sess domain.InterviewSession) error {
	ctx, span := otel.Tracer("session.redis").Start(ctx, "sessions.Put")
	defer span.End()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("op=session.put_encode: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("op=session.put: %w", err)
	}
	return nil
}

// MemoryStore is a process-local store used when Redis is not configured.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string]memEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

type memEntry struct {
	sess    domain.InterviewSession
	expires time.Time
}

// NewMemoryStore returns an in-memory store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{data: map[string]memEntry{}, ttl: ttl, now: time.Now}
}

// Get loads the session id, or domain.ErrNotFound once it has expired.
func (m *MemoryStore) Get(_ context.Context, id string) (domain.InterviewSession, error) {
	m.mu.RLock()
	e, ok := m.data[id]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
	}
	return e.sess, nil
}

// Put stores sess and refreshes its TTL. Expired entries are swept on
// write, at most once per TTL.
func (m *MemoryStore) Put(_ context.Context, sess domain.InterviewSession) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !now.Before(m.nextSweep) {
		m.sweepLocked(now)
		m.nextSweep = now.Add(m.ttl)
	}
	m.data[sess.ID] = memEntry{sess: sess, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for id, e := range m.data {
		if !now.Before(e.expires) {
			delete(m.data, id)
		}
	}
}
