package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// RegistryRepository persists enrolled face embeddings. One row per identity;
// re-enrollment overwrites (last-write-wins).
type RegistryRepository struct {
	pool PgxPool
}

func NewRegistryRepository(pool PgxPool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) Upsert(ctx context.Context, entry *domain.RegistryEntry) error {
	query := `
		INSERT INTO face_embeddings (user_id, embedding, model_name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
		    model_name = EXCLUDED.model_name,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		entry.Identity,
		toVector(entry.Embedding),
		entry.ModelName,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}

	return nil
}

func (r *RegistryRepository) GetByIdentity(ctx context.Context, identity string) (*domain.RegistryEntry, error) {
	query := `
		SELECT user_id, embedding, model_name, created_at, updated_at
		FROM face_embeddings
		WHERE user_id = $1
	`

	var entry domain.RegistryEntry
	var embedding pgvector.Vector

	err := r.pool.QueryRow(ctx, query, identity).Scan(
		&entry.Identity,
		&embedding,
		&entry.ModelName,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFaceNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", err)
	}

	entry.Embedding = fromVector(embedding)
	return &entry, nil
}

// FetchAll returns the full registry snapshot the match engine scores
// against. Every verify attempt reads a fresh snapshot.
func (r *RegistryRepository) FetchAll(ctx context.Context) ([]domain.RegistryEntry, error) {
	query := `
		SELECT user_id, embedding, model_name, created_at, updated_at
		FROM face_embeddings
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}
	defer rows.Close()

	var entries []domain.RegistryEntry
	for rows.Next() {
		var entry domain.RegistryEntry
		var embedding pgvector.Vector

		if err := rows.Scan(
			&entry.Identity,
			&embedding,
			&entry.ModelName,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registry row: %w", err)
		}

		entry.Embedding = fromVector(embedding)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registry: %w", err)
	}

	return entries, nil
}

func (r *RegistryRepository) Delete(ctx context.Context, identity string) error {
	query := `
		DELETE FROM face_embeddings
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, identity)
	if err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrFaceNotRegistered
	}

	return nil
}

func (r *RegistryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM face_embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}
