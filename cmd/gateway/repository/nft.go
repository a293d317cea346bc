package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walruspass/walruspass/cmd/gateway/models"
)

type NFTRepository struct {
	pool *pgxpool.Pool
}

func NewNFTRepository(pool *pgxpool.Pool) *NFTRepository {
	return &NFTRepository{pool: pool}
}

// Upsert stores an NFT record keyed by its on-chain object id. A replayed
// insert after a partial failure refreshes the metadata instead of erroring.
func (r *NFTRepository) Upsert(ctx context.Context, n *models.NFT) (*models.NFT, error) {
	query := `
		INSERT INTO nfts (id, file_id, name, description, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    price = EXCLUDED.price,
		    updated_at = NOW()
		RETURNING id, file_id, name, description, price, created_at, updated_at`

	var out models.NFT
	err := r.pool.QueryRow(ctx, query, n.ID, n.FileID, n.Name, n.Description, n.Price).Scan(
		&out.ID, &out.FileID, &out.Name, &out.Description, &out.Price,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert nft %s: %w", n.ID, err)
	}
	return &out, nil
}

// GetByID fetches an NFT record. Returns pgx.ErrNoRows when absent.
func (r *NFTRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	query := `
		SELECT id, file_id, name, description, price, created_at, updated_at
		FROM nfts
		WHERE id = $1`

	var n models.NFT
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.FileID, &n.Name, &n.Description, &n.Price, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
