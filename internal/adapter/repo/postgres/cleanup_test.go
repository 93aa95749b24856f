package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prepio-api/internal/adapter/repo/postgres"
)

type fakeTx struct {
	execErr    error
	commitErr  error
	execs      []execCall
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("DELETE 2"), t.execErr
}
func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = t.commitErr == nil
	return t.commitErr
}
func (t *fakeTx) Rollback(_ context.Context) error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	beginErr error
	tx       *fakeTx
}

func (b *fakeBeginner) Begin(_ context.Context) (postgres.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestCleanupService_CleanupOldData_OK(t *testing.T) {
	tx := &fakeTx{}
	svc := postgres.NewCleanupService(&fakeBeginner{tx: tx}, 30)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	require.NoError(t, svc.CleanupOldData(context.Background()))
	assert.True(t, tx.committed)
	require.Len(t, tx.execs, 3)
	assert.Contains(t, tx.execs[0].sql, "challenge_attempts")
	assert.Contains(t, tx.execs[1].sql, "interview_reports")
	assert.Contains(t, tx.execs[2].sql, "quota_buckets")
	assert.Equal(t, now.AddDate(0, 0, -30), tx.execs[0].args[0])
}

func TestCleanupService_DefaultRetention(t *testing.T) {
	assert.Equal(t, 90, postgres.NewCleanupService(&fakeBeginner{}, 0).RetentionDays)
}

func TestCleanupService_Errors(t *testing.T) {
	err := postgres.NewCleanupService(&fakeBeginner{beginErr: errors.New("begin")}, 1).CleanupOldData(context.Background())
	assert.ErrorContains(t, err, "op=cleanup.begin")

	tx := &fakeTx{execErr: errors.New("locked")}
	err = postgres.NewCleanupService(&fakeBeginner{tx: tx}, 1).CleanupOldData(context.Background())
	assert.ErrorContains(t, err, "op=cleanup.attempts")
	assert.True(t, tx.rolledBack)

	tx = &fakeTx{commitErr: errors.New("commit")}
	err = postgres.NewCleanupService(&fakeBeginner{tx: tx}, 1).CleanupOldData(context.Background())
	assert.ErrorContains(t, err, "op=cleanup.commit")
}

func TestCleanupService_RunPeriodic_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx := &fakeTx{}
	done := make(chan struct{})
	go func() {
		postgres.NewCleanupService(&fakeBeginner{tx: tx}, 1).RunPeriodic(ctx, 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
}
