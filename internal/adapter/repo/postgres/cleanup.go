package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the part of pgx.Tx the cleanup needs.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner starts transactions.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PoolBeginner adapts a pgx pool to Beginner.
type PoolBeginner struct {
	Pool interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	}
}

// Begin implements Beginner.
func (b PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	return b.Pool.Begin(ctx)
}

// CleanupService handles data retention and cleanup
type CleanupService struct {
	DB            Beginner
	RetentionDays int
	Now           func() time.Time
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db Beginner, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{DB: db, RetentionDays: retentionDays, Now: time.Now}
}

// CleanupOldData removes attempts, reports and stale quota snapshots older
// than the retention period in one transaction.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := s.Now().UTC().AddDate(0, 0, -s.RetentionDays)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("op=cleanup.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	attempts, err := tx.Exec(ctx, `DELETE FROM challenge_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.attempts: %w", err)
	}
	reports, err := tx.Exec(ctx, `DELETE FROM interview_reports WHERE created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.reports: %w", err)
	}
	buckets, err := tx.Exec(ctx, `DELETE FROM quota_buckets WHERE updated_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.buckets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=cleanup.commit: %w", err)
	}

	slog.Info("data cleanup completed",
		slog.Int64("deleted_attempts", attempts.RowsAffected()),
		slog.Int64("deleted_reports", reports.RowsAffected()),
		slog.Int64("deleted_buckets", buckets.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// RunPeriodic runs the cleanup once immediately and then every interval
// until ctx is done.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
