package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walruspass/walruspass/cmd/gateway/models"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID fetches a profile. Returns pgx.ErrNoRows when absent.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, display_name, avatar_url, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var p models.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureExists inserts an empty profile if one is not present yet.
// Used on first authentication so every signed-in user has a row.
func (r *ProfileRepository) EnsureExists(ctx context.Context, id string) error {
	query := `
		INSERT INTO profiles (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to ensure profile %s: %w", id, err)
	}
	return nil
}

// Update overwrites the mutable fields that are non-nil and returns the
// resulting row.
func (r *ProfileRepository) Update(ctx context.Context, id string, displayName, avatarURL *string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET display_name = COALESCE($2, display_name),
		    avatar_url   = COALESCE($3, avatar_url),
		    updated_at   = NOW()
		WHERE id = $1
		RETURNING id, display_name, avatar_url, created_at, updated_at`

	var p models.Profile
	err := r.pool.QueryRow(ctx, query, id, displayName, avatarURL).Scan(
		&p.ID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	return &p, nil
}
