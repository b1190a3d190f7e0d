package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RateLimiter counts denied verification attempts per kiosk in a PostgreSQL
// sliding window. It is a brute-force guard: a kiosk that keeps producing
// denials gets locked out for the rest of the window.
type RateLimiter struct {
	db     DB
	window time.Duration
}

// NewRateLimiter creates a new rate limiter with sliding window
func NewRateLimiter(db *pgxpool.Pool, window time.Duration) *RateLimiter {
	return &RateLimiter{
		db:     db,
		window: window,
	}
}

// NewRateLimiterWithDB creates a rate limiter with custom DB interface
func NewRateLimiterWithDB(db DB, window time.Duration) *RateLimiter {
	return &RateLimiter{
		db:     db,
		window: window,
	}
}

// RecordDenied atomically increments the denied-attempt counter for a kiosk
// and fails with ErrRateLimitExceeded once the count passes the limit.
func (r *RateLimiter) RecordDenied(ctx context.Context, kioskID string, limit int) error {
	if limit <= 0 {
		return nil // No limit configured
	}

	now := time.Now()
	windowStart := now.Add(-r.window)
	key := fmt.Sprintf("denied_rate:%s", kioskID)

	// ON CONFLICT keeps increment-or-reset atomic under concurrent kiosks
	query := `
		WITH current_count AS (
			INSERT INTO rate_limit_counters (key, count, window_start, window_end, kiosk_id)
			VALUES ($1, 1, $2, $3, $4)
			ON CONFLICT (key)
			DO UPDATE SET
				count = CASE
					WHEN rate_limit_counters.window_end < $2 THEN 1
					ELSE rate_limit_counters.count + 1
				END,
				window_start = CASE
					WHEN rate_limit_counters.window_end < $2 THEN $2
					ELSE rate_limit_counters.window_start
				END,
				window_end = $3
			RETURNING count
		)
		SELECT count FROM current_count
	`

	var count int
	err := r.db.QueryRow(ctx, query, key, windowStart, now, kioskID).Scan(&count)
	if err != nil {
		return fmt.Errorf("record denied attempt: %w", err)
	}

	if count > limit {
		return domain.ErrRateLimitExceeded
	}

	return nil
}

// CheckLimit reports whether the kiosk is currently locked out, without
// counting a new attempt.
func (r *RateLimiter) CheckLimit(ctx context.Context, kioskID string, limit int) error {
	if limit <= 0 {
		return nil
	}

	count, err := r.GetCurrentCount(ctx, kioskID)
	if err != nil {
		return err
	}

	if count > limit {
		return domain.ErrRateLimitExceeded
	}
	return nil
}

// CleanupExpired removes expired rate limit counters (run via cron)
func (r *RateLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_end < NOW() - INTERVAL '1 hour'`
	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// GetCurrentCount returns the current count for a kiosk (for monitoring)
func (r *RateLimiter) GetCurrentCount(ctx context.Context, kioskID string) (int, error) {
	key := fmt.Sprintf("denied_rate:%s", kioskID)
	windowStart := time.Now().Add(-r.window)

	query := `
		SELECT count
		FROM rate_limit_counters
		WHERE key = $1 AND window_end > $2
	`

	var count int
	err := r.db.QueryRow(ctx, query, key, windowStart).Scan(&count)
	if err != nil {
		return 0, nil // No records = 0 count
	}

	return count, nil
}

// ResetLimit clears the counter for a kiosk (admin operation)
func (r *RateLimiter) ResetLimit(ctx context.Context, kioskID string) error {
	key := fmt.Sprintf("denied_rate:%s", kioskID)
	query := `DELETE FROM rate_limit_counters WHERE key = $1`
	_, err := r.db.Exec(ctx, query, key)
	return err
}
