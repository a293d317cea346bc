package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/logger"
)

// Vault create replays within this window short-circuit to the stored row
const vaultCreateGuardTTL = 10 * time.Minute

// VaultRepo is the persistence surface the vault service needs
type VaultRepo interface {
	GetByIDAndWallet(ctx context.Context, id, walletAddress string) (*models.Vault, error)
	Create(ctx context.Context, v *models.Vault) (*models.Vault, error)
}

// Idempotency is the distributed create guard. A nil guard degrades to
// relying on the database unique constraint alone.
type Idempotency interface {
	SetNX(ctx context.Context, key, value string, expiry time.Duration) (bool, error)
}

type VaultService struct {
	repo VaultRepo
	idem Idempotency
	log  *logger.Logger
}

func NewVaultService(repo VaultRepo, idem Idempotency, log *logger.Logger) *VaultService {
	return &VaultService{repo: repo, idem: idem, log: log}
}

// Create records a vault for a wallet. Replaying the same (vault, wallet)
// pair returns the existing row instead of erroring.
func (s *VaultService) Create(ctx context.Context, vaultID, name, walletAddress string, encrypted bool) (*models.Vault, error) {
	if vaultID == "" || name == "" || walletAddress == "" {
		return nil, apierror.New(apierror.KindValidation, "vault id, name and wallet address are required")
	}

	if s.idem != nil {
		key := fmt.Sprintf("vault:create:%s:%s", vaultID, walletAddress)
		acquired, err := s.idem.SetNX(ctx, key, "1", vaultCreateGuardTTL)
		if err != nil {
			// Guard failures must not block creation
			s.log.Warn("idempotency guard unavailable", "vault_id", vaultID, "error", err)
		} else if !acquired {
			existing, err := s.repo.GetByIDAndWallet(ctx, vaultID, walletAddress)
			if err == nil {
				s.log.Info("vault create replayed", "vault_id", vaultID, "wallet_address", walletAddress)
				return existing, nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apierror.FromDB(err, "vault not found")
			}
			// Guard held but no row persisted yet; fall through and create
		}
	}

	v, err := s.repo.Create(ctx, &models.Vault{
		ID:            vaultID,
		Name:          name,
		WalletAddress: walletAddress,
		Encrypted:     encrypted,
	})
	if err != nil {
		return nil, apierror.FromDB(err, "vault not found")
	}

	s.log.Info("vault recorded", "vault_id", v.ID, "wallet_address", v.WalletAddress)
	return v, nil
}
