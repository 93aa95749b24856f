package app

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusAdapter struct{ s *redis.StatusCmd }

func (s statusAdapter) Err() error { return s.s.Err() }

// clientAdapter adapts *redis.Client into RedisClient.
type clientAdapter struct{ c *redis.Client }

func (c clientAdapter) Ping(ctx context.Context) RedisPingResult { return statusAdapter{c.c.Ping(ctx)} }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestBuildReadinessChecks_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rc := BuildReadinessChecks(nil, clientAdapter{rdb}, nil)
	require.NotNil(t, rc.Redis)
	assert.Nil(t, rc.DB)
	assert.Nil(t, rc.Kafka)
	require.NoError(t, rc.Redis(context.Background()))

	mr.Close()
	err := rc.Redis(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis:")
}

func TestBuildReadinessChecks_DBAndKafka(t *testing.T) {
	boom := errors.New("boom")
	rc := BuildReadinessChecks(
		pingFunc(func(context.Context) error { return nil }),
		nil,
		pingFunc(func(context.Context) error { return boom }),
	)
	require.NotNil(t, rc.DB)
	require.NotNil(t, rc.Kafka)
	assert.Nil(t, rc.Redis)
	assert.NoError(t, rc.DB(context.Background()))
	err := rc.Kafka(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "kafka:")
}
