package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// RegistryRepository tests

func TestRegistryRepository_Upsert(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "insert new identity",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"created_at", "updated_at"}).
					AddRow(now, now)
				mock.ExpectQuery(`INSERT INTO face_embeddings`).
					WithArgs("alice", pgxmock.AnyArg(), "Facenet512").
					WillReturnRows(rows)
			},
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO face_embeddings`).
					WithArgs("alice", pgxmock.AnyArg(), "Facenet512").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewRegistryRepository(mock)
			entry := &domain.RegistryEntry{
				Identity:  "alice",
				Embedding: []float64{0.1, 0.2, 0.3},
				ModelName: "Facenet512",
			}

			err = repo.Upsert(context.Background(), entry)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, now, entry.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistryRepository_GetByIdentity(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"user_id", "embedding", "model_name", "created_at", "updated_at"}).
					AddRow("alice", pgvector.NewVector([]float32{0.5, 0.5}), "Facenet512", now, now)
				mock.ExpectQuery(`SELECT user_id, embedding, model_name, created_at, updated_at FROM face_embeddings`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
		},
		{
			name: "not registered",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT user_id, embedding, model_name, created_at, updated_at FROM face_embeddings`).
					WithArgs("alice").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrFaceNotRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewRegistryRepository(mock)
			entry, err := repo.GetByIdentity(context.Background(), "alice")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", entry.Identity)
				assert.Equal(t, []float64{0.5, 0.5}, entry.Embedding)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistryRepository_FetchAll(t *testing.T) {
	now := time.Now()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"user_id", "embedding", "model_name", "created_at", "updated_at"}).
		AddRow("alice", pgvector.NewVector([]float32{1, 0}), "Facenet512", now, now).
		AddRow("bob", pgvector.NewVector([]float32{0, 1}), "Facenet512", now, now)
	mock.ExpectQuery(`SELECT user_id, embedding, model_name, created_at, updated_at FROM face_embeddings`).
		WillReturnRows(rows)

	repo := NewRegistryRepository(mock)
	entries, err := repo.FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Identity)
	assert.Equal(t, []float64{1, 0}, entries[0].Embedding)
	assert.Equal(t, "bob", entries[1].Identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepository_FetchAll_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT user_id, embedding, model_name, created_at, updated_at FROM face_embeddings`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "embedding", "model_name", "created_at", "updated_at"}))

	repo := NewRegistryRepository(mock)
	entries, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegistryRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "deleted",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM face_embeddings`).
					WithArgs("alice").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "not registered",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM face_embeddings`).
					WithArgs("alice").
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: domain.ErrFaceNotRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewRegistryRepository(mock)
			err = repo.Delete(context.Background(), "alice")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// AttendanceRepository tests

func visitColumns() []string {
	return []string{"id", "user_id", "in_time", "out_time", "created_at"}
}

func TestAttendanceRepository_LatestVisit(t *testing.T) {
	visitID := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantRow   bool
	}{
		{
			name: "open visit",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(visitColumns()).
					AddRow(visitID, "alice", now, nil, now)
				mock.ExpectQuery(`SELECT id, user_id, in_time, out_time, created_at FROM lounge_visits`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
			wantRow: true,
		},
		{
			name: "never seen",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, user_id, in_time, out_time, created_at FROM lounge_visits`).
					WithArgs("alice").
					WillReturnError(pgx.ErrNoRows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAttendanceRepository(mock)
			row, err := repo.LatestVisit(context.Background(), "alice")
			require.NoError(t, err)

			if tt.wantRow {
				require.NotNil(t, row)
				assert.Equal(t, visitID, row.ID)
				assert.True(t, row.Open())
				assert.Equal(t, domain.StatusCheckedIn, row.Status())
			} else {
				assert.Nil(t, row)
				assert.Equal(t, domain.StatusNever, row.Status())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceRepository_CreateVisit(t *testing.T) {
	visitID := uuid.New()
	checkin := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "opened",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(visitColumns()).
					AddRow(visitID, "alice", checkin, nil, checkin)
				mock.ExpectQuery(`INSERT INTO lounge_visits`).
					WithArgs("alice", checkin).
					WillReturnRows(rows)
			},
		},
		{
			name: "open row already exists",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO lounge_visits`).
					WithArgs("alice", checkin).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrCheckinConflict,
		},
		{
			name: "lost race on unique index",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO lounge_visits`).
					WithArgs("alice", checkin).
					WillReturnError(errors.New(`duplicate key value violates unique constraint "lounge_visits_user_open_idx" (SQLSTATE 23505)`))
			},
			wantErr: domain.ErrCheckinConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAttendanceRepository(mock)
			row, err := repo.CreateVisit(context.Background(), "alice", checkin)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, row)
			} else {
				require.NoError(t, err)
				assert.Equal(t, visitID, row.ID)
				assert.True(t, row.Open())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceRepository_CloseVisit(t *testing.T) {
	visitID := uuid.New()
	checkin := time.Now().Add(-10 * time.Minute)
	checkout := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "closed",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(visitColumns()).
					AddRow(visitID, "alice", checkin, &checkout, checkin)
				mock.ExpectQuery(`UPDATE lounge_visits`).
					WithArgs(visitID, checkout).
					WillReturnRows(rows)
			},
		},
		{
			name: "already closed",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE lounge_visits`).
					WithArgs(visitID, checkout).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(visitID).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrVisitAlreadyClosed,
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE lounge_visits`).
					WithArgs(visitID, checkout).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(visitID).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrVisitNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAttendanceRepository(mock)
			row, err := repo.CloseVisit(context.Background(), visitID.String(), checkout)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, row)
			} else {
				require.NoError(t, err)
				assert.False(t, row.Open())
				assert.Equal(t, domain.StatusCheckedOut, row.Status())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceRepository_CloseVisit_BadID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	_, err = repo.CloseVisit(context.Background(), "not-a-uuid", time.Now())
	assert.ErrorIs(t, err, domain.ErrVisitNotFound)
}
