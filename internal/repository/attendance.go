package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// AttendanceRepository persists lounge visits. A partial unique index on
// (user_id) WHERE out_time IS NULL enforces at most one open visit per
// identity, so the conditional insert can lose a race but never double-open.
type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) LatestVisit(ctx context.Context, identity string) (*domain.AttendanceRow, error) {
	query := `
		SELECT id, user_id, in_time, out_time, created_at
		FROM lounge_visits
		WHERE user_id = $1
		ORDER BY in_time DESC
		LIMIT 1
	`

	var row domain.AttendanceRow
	err := r.pool.QueryRow(ctx, query, identity).Scan(
		&row.ID,
		&row.Identity,
		&row.CheckinTime,
		&row.CheckoutTime,
		&row.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest visit: %w", err)
	}

	return &row, nil
}

// CreateVisit opens a visit only if the identity has no open one. A losing
// concurrent writer sees either zero inserted rows or a unique violation;
// both surface as ErrCheckinConflict so the caller can re-read and retry.
func (r *AttendanceRepository) CreateVisit(ctx context.Context, identity string, checkin time.Time) (*domain.AttendanceRow, error) {
	query := `
		INSERT INTO lounge_visits (user_id, in_time)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM lounge_visits
			WHERE user_id = $1 AND out_time IS NULL
		)
		RETURNING id, user_id, in_time, out_time, created_at
	`

	var row domain.AttendanceRow
	err := r.pool.QueryRow(ctx, query, identity, checkin).Scan(
		&row.ID,
		&row.Identity,
		&row.CheckinTime,
		&row.CheckoutTime,
		&row.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return nil, domain.ErrCheckinConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}

	return &row, nil
}

func (r *AttendanceRepository) CloseVisit(ctx context.Context, visitID string, checkout time.Time) (*domain.AttendanceRow, error) {
	id, err := uuid.Parse(visitID)
	if err != nil {
		return nil, domain.ErrVisitNotFound.WithError(err)
	}

	query := `
		UPDATE lounge_visits
		SET out_time = $2
		WHERE id = $1 AND out_time IS NULL
		RETURNING id, user_id, in_time, out_time, created_at
	`

	var row domain.AttendanceRow
	err = r.pool.QueryRow(ctx, query, id, checkout).Scan(
		&row.ID,
		&row.Identity,
		&row.CheckinTime,
		&row.CheckoutTime,
		&row.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyCloseMiss(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("close visit: %w", err)
	}

	return &row, nil
}

// classifyCloseMiss tells a vanished row apart from one that was already
// closed by someone else.
func (r *AttendanceRepository) classifyCloseMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lounge_visits WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("classify close miss: %w", err)
	}

	if exists {
		return domain.ErrVisitAlreadyClosed
	}
	return domain.ErrVisitNotFound
}
