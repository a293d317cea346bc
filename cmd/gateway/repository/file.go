package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walruspass/walruspass/cmd/gateway/models"
)

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

// GetByID fetches a file record. Returns pgx.ErrNoRows when absent.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, vault_id, upload_id, blob_id, name, mime_type, size, created_at, updated_at
		FROM tusky_files
		WHERE id = $1`

	var f models.File
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.VaultID, &f.UploadID, &f.BlobID, &f.Name,
		&f.MimeType, &f.Size, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Upsert stores a file record, overwriting metadata on replay so a retried
// save lands on the same row.
func (r *FileRepository) Upsert(ctx context.Context, f *models.File) (*models.File, error) {
	query := `
		INSERT INTO tusky_files (id, vault_id, upload_id, blob_id, name, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET blob_id = EXCLUDED.blob_id,
		    name = EXCLUDED.name,
		    mime_type = EXCLUDED.mime_type,
		    size = EXCLUDED.size,
		    updated_at = NOW()
		RETURNING id, vault_id, upload_id, blob_id, name, mime_type, size, created_at, updated_at`

	var out models.File
	err := r.pool.QueryRow(ctx, query,
		f.ID, f.VaultID, f.UploadID, f.BlobID, f.Name, f.MimeType, f.Size,
	).Scan(
		&out.ID, &out.VaultID, &out.UploadID, &out.BlobID, &out.Name,
		&out.MimeType, &out.Size, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert file %s: %w", f.ID, err)
	}
	return &out, nil
}

// List returns a page of files joined with their NFT (when minted), plus the
// total count matching the filters. Empty vaultID or walletAddress means
// no filtering on that column.
func (r *FileRepository) List(ctx context.Context, vaultID, walletAddress string, limit, offset int) ([]*models.FileWithNFT, int, error) {
	query := `
		SELECT f.id, f.vault_id, f.upload_id, f.blob_id, f.name, f.mime_type, f.size,
		       f.created_at, f.updated_at,
		       n.id, n.name, n.price,
		       COUNT(*) OVER() AS total
		FROM tusky_files f
		JOIN tusky_vaults v ON v.id = f.vault_id
		LEFT JOIN nfts n ON n.file_id = f.id
		WHERE ($1 = '' OR f.vault_id = $1)
		  AND ($2 = '' OR v.wallet_address = $2)
		ORDER BY f.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, vaultID, walletAddress, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var (
		items []*models.FileWithNFT
		total int
	)
	for rows.Next() {
		var (
			item     models.FileWithNFT
			nftID    *string
			nftName  *string
			nftPrice *string
		)
		err := rows.Scan(
			&item.ID, &item.VaultID, &item.UploadID, &item.BlobID, &item.Name,
			&item.MimeType, &item.Size, &item.CreatedAt, &item.UpdatedAt,
			&nftID, &nftName, &nftPrice, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan file row: %w", err)
		}
		if nftID != nil {
			item.NFT = &models.NFTRef{ID: *nftID, Name: nftName, Price: nftPrice}
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read file rows: %w", err)
	}
	return items, total, nil
}
