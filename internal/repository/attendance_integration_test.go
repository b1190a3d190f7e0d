//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "aeroface_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/aeroface_test?sslmode=disable", host, port.Port())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS "vector";

		CREATE TABLE IF NOT EXISTS face_embeddings (
			user_id TEXT PRIMARY KEY,
			embedding vector(512) NOT NULL,
			model_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS lounge_visits (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id TEXT NOT NULL,
			in_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			out_time TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS lounge_visits_user_open_idx
			ON lounge_visits(user_id) WHERE out_time IS NULL;
	`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// TestConditionalCheckin_Integration exercises the real partial unique index:
// of N concurrent check-in attempts for one identity, exactly one wins and
// the rest get the retryable conflict.
func TestConditionalCheckin_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(db)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateVisit(ctx, "alice", time.Now())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domain.ErrCheckinConflict):
			conflicts++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)

	row, err := repo.LatestVisit(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, domain.StatusCheckedIn, row.Status())
}

// TestAttendanceCycle_Integration walks one full check-in and check-out
// cycle against real Postgres.
func TestAttendanceCycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(db)

	row, err := repo.LatestVisit(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, row)

	open, err := repo.CreateVisit(ctx, "bob", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedIn, open.Status())

	closed, err := repo.CloseVisit(ctx, open.ID.String(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedOut, closed.Status())

	// Closing twice reports already-closed.
	_, err = repo.CloseVisit(ctx, open.ID.String(), time.Now())
	assert.ErrorIs(t, err, domain.ErrVisitAlreadyClosed)

	// A fresh check-in is allowed again after the checkout.
	reopened, err := repo.CreateVisit(ctx, "bob", time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, open.ID, reopened.ID)
}

// TestRegistryUpsert_Integration covers the last-write-wins upsert with a
// real vector column.
func TestRegistryUpsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewRegistryRepository(db)

	first := make([]float64, 512)
	first[0] = 1.0
	require.NoError(t, repo.Upsert(ctx, &domain.RegistryEntry{
		Identity:  "alice",
		Embedding: first,
		ModelName: "Facenet512",
	}))

	second := make([]float64, 512)
	second[1] = 1.0
	require.NoError(t, repo.Upsert(ctx, &domain.RegistryEntry{
		Identity:  "alice",
		Embedding: second,
		ModelName: "Facenet512",
	}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entry, err := repo.GetByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, entry.Embedding[1], 0.0001)
	assert.InDelta(t, 0.0, entry.Embedding[0], 0.0001)
}
