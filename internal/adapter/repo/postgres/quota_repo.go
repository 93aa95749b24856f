package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/prepio-api/internal/service/ratelimiter"
)

// QuotaBucketRepo mirrors AI quota buckets so a Redis flush does not reset them.
type QuotaBucketRepo struct{ Pool PgxPool }

// NewQuotaBucketRepo constructs a QuotaBucketRepo with the given pool.
func NewQuotaBucketRepo(p PgxPool) *QuotaBucketRepo { return &QuotaBucketRepo{Pool: p} }

// SaveBucket upserts the snapshot for st.Key.
func (r *QuotaBucketRepo) SaveBucket(ctx context.Context, st ratelimiter.BucketState) error {
	q := `INSERT INTO quota_buckets (key, capacity, refill_rate, tokens, last_refill, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6)
	ON CONFLICT (key)
	DO UPDATE SET capacity=EXCLUDED.capacity, refill_rate=EXCLUDED.refill_rate, tokens=EXCLUDED.tokens, last_refill=EXCLUDED.last_refill, updated_at=EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, st.Key, st.Capacity, st.RefillRate, st.Tokens, st.LastRefill.UTC(), time.Now().UTC()); err != nil {
		return fmt.Errorf("op=quota.save: %w", err)
	}
	return nil
}

// LoadBuckets returns every mirrored bucket.
func (r *QuotaBucketRepo) LoadBuckets(ctx context.Context) ([]ratelimiter.BucketState, error) {
	rows, err := r.Pool.Query(ctx, `SELECT key, capacity, refill_rate, tokens, last_refill FROM quota_buckets`)
	if err != nil {
		return nil, fmt.Errorf("op=quota.load: %w", err)
	}
	defer rows.Close()
	var out []ratelimiter.BucketState
	for rows.Next() {
		var st ratelimiter.BucketState
		if err := rows.Scan(&st.Key, &st.Capacity, &st.RefillRate, &st.Tokens, &st.LastRefill); err != nil {
			return nil, fmt.Errorf("op=quota.load_scan: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=quota.load_rows: %w", err)
	}
	return out, nil
}
