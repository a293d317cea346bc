package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walruspass/walruspass/cmd/gateway/models"
)

type VaultRepository struct {
	pool *pgxpool.Pool
}

func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return &VaultRepository{pool: pool}
}

// GetByIDAndWallet fetches a vault scoped to its owning wallet.
// Returns pgx.ErrNoRows when the pair does not exist.
func (r *VaultRepository) GetByIDAndWallet(ctx context.Context, id, walletAddress string) (*models.Vault, error) {
	query := `
		SELECT id, name, wallet_address, encrypted, created_at
		FROM tusky_vaults
		WHERE id = $1 AND wallet_address = $2`

	var v models.Vault
	err := r.pool.QueryRow(ctx, query, id, walletAddress).Scan(
		&v.ID, &v.Name, &v.WalletAddress, &v.Encrypted, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a vault record. Inserting the same (id, wallet_address)
// pair twice is a no-op so replayed create calls stay idempotent.
func (r *VaultRepository) Create(ctx context.Context, v *models.Vault) (*models.Vault, error) {
	query := `
		INSERT INTO tusky_vaults (id, name, wallet_address, encrypted)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id, wallet_address) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, v.ID, v.Name, v.WalletAddress, v.Encrypted); err != nil {
		return nil, fmt.Errorf("failed to create vault %s: %w", v.ID, err)
	}
	return r.GetByIDAndWallet(ctx, v.ID, v.WalletAddress)
}
