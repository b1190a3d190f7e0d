package repository

import (
	"context"
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// RegistryRepositoryInterface defines operations for the face registry
type RegistryRepositoryInterface interface {
	Upsert(ctx context.Context, entry *domain.RegistryEntry) error
	GetByIdentity(ctx context.Context, identity string) (*domain.RegistryEntry, error)
	FetchAll(ctx context.Context) ([]domain.RegistryEntry, error)
	Delete(ctx context.Context, identity string) error
	Count(ctx context.Context) (int, error)
}

// AttendanceRepositoryInterface defines operations for lounge visits
type AttendanceRepositoryInterface interface {
	LatestVisit(ctx context.Context, identity string) (*domain.AttendanceRow, error)
	CreateVisit(ctx context.Context, identity string, checkin time.Time) (*domain.AttendanceRow, error)
	CloseVisit(ctx context.Context, visitID string, checkout time.Time) (*domain.AttendanceRow, error)
}
