package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// DefaultMinVisit is how long after a check-in a re-recognition is still
// treated as the same physical visit instead of a check-out.
const DefaultMinVisit = 60 * time.Second

// Store is the persistence surface the state machine drives. CreateVisit must
// be conditional: it inserts an open row only when the identity has none, and
// reports ErrCheckinConflict when a concurrent writer won that race.
type Store interface {
	// LatestVisit returns the most recent visit row for the identity, or
	// (nil, nil) when the identity has none.
	LatestVisit(ctx context.Context, identity string) (*domain.AttendanceRow, error)

	// CreateVisit opens a visit at the given time, only if no open row
	// exists for the identity.
	CreateVisit(ctx context.Context, identity string, checkin time.Time) (*domain.AttendanceRow, error)

	// CloseVisit stamps the open row's checkout time.
	CloseVisit(ctx context.Context, visitID string, checkout time.Time) (*domain.AttendanceRow, error)
}

// Machine is the attendance state machine. Each accepted recognition toggles
// the identity between checked-in and checked-out, except within the minimum
// visit window where it is a no-op.
type Machine struct {
	store    Store
	minVisit time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithMinVisit overrides the minimum visit window. Zero disables it, so
// every accepted recognition toggles the state.
func WithMinVisit(d time.Duration) Option {
	return func(m *Machine) {
		m.minVisit = d
	}
}

// WithClock overrides the transition timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func NewMachine(store Store, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		store:    store,
		minVisit: DefaultMinVisit,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve applies one match decision to the attendance state. Rejected
// matches produce a denied resolution and touch nothing. Accepted matches
// toggle: no row or closed row means check-in, an open row means check-out,
// unless the open row is younger than the minimum visit window.
//
// A lost check-in race surfaces as ErrCheckinConflict; the caller may retry
// with a fresh read.
func (m *Machine) Resolve(ctx context.Context, result domain.MatchResult) (domain.Resolution, error) {
	ts := m.now()

	if !result.Accepted {
		return domain.Resolution{
			Event:     domain.EventDenied,
			Timestamp: ts,
		}, nil
	}

	identity := *result.Identity

	latest, err := m.store.LatestVisit(ctx, identity)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("load latest visit: %w", err)
	}

	if latest.Status() != domain.StatusCheckedIn {
		row, err := m.store.CreateVisit(ctx, identity, ts)
		if err != nil {
			return domain.Resolution{}, fmt.Errorf("create visit: %w", err)
		}

		m.logger.Info("attendance check-in",
			slog.String("identity", identity),
			slog.String("visit_id", row.ID.String()),
		)
		return domain.Resolution{
			Event:     domain.EventCheckIn,
			Identity:  identity,
			Timestamp: ts,
			Row:       row,
		}, nil
	}

	if m.minVisit > 0 && ts.Sub(latest.CheckinTime) < m.minVisit {
		return domain.Resolution{
			Event:     domain.EventRecentCheckin,
			Identity:  identity,
			Timestamp: ts,
			Row:       latest,
		}, nil
	}

	row, err := m.store.CloseVisit(ctx, latest.ID.String(), ts)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("close visit: %w", err)
	}

	m.logger.Info("attendance check-out",
		slog.String("identity", identity),
		slog.String("visit_id", row.ID.String()),
		slog.Duration("visit_length", ts.Sub(row.CheckinTime)),
	)
	return domain.Resolution{
		Event:     domain.EventCheckOut,
		Identity:  identity,
		Timestamp: ts,
		Row:       row,
	}, nil
}
