package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/logger"
)

const (
	fileListCacheTTL = 30 * time.Second
	maxListLimit     = 1000
)

// FileRepo is the persistence surface the file service needs
type FileRepo interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
	Upsert(ctx context.Context, f *models.File) (*models.File, error)
	List(ctx context.Context, vaultID, walletAddress string, limit, offset int) ([]*models.FileWithNFT, int, error)
}

// VaultReader checks vault ownership before accepting file metadata
type VaultReader interface {
	GetByIDAndWallet(ctx context.Context, id, walletAddress string) (*models.Vault, error)
}

// Cache holds short-lived listing pages. A nil cache disables it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithExpiry(ctx context.Context, key, value string, expiry time.Duration) error
}

// SaveFileInput carries file metadata reported after an upload
type SaveFileInput struct {
	FileID        string
	UploadID      string
	BlobID        string
	Name          string
	VaultID       string
	WalletAddress string
	MimeType      *string
	Size          *int64
}

// FilePage is one page of a file listing
type FilePage struct {
	Items []*models.FileWithNFT `json:"items"`
	Count int                   `json:"count"`
}

type FileService struct {
	files  FileRepo
	vaults VaultReader
	cache  Cache
	log    *logger.Logger
}

func NewFileService(files FileRepo, vaults VaultReader, cache Cache, log *logger.Logger) *FileService {
	return &FileService{files: files, vaults: vaults, cache: cache, log: log}
}

// Save records uploaded file metadata. The vault must already be recorded
// for the reporting wallet; a foreign or unknown vault reads as not found.
func (s *FileService) Save(ctx context.Context, in SaveFileInput) (*models.File, error) {
	if in.UploadID == "" || in.BlobID == "" || in.Name == "" || in.VaultID == "" || in.WalletAddress == "" {
		return nil, apierror.New(apierror.KindValidation, "upload id, blob id, name, vault id and wallet address are required")
	}
	if in.FileID == "" {
		in.FileID = in.UploadID
	}

	if _, err := s.vaults.GetByIDAndWallet(ctx, in.VaultID, in.WalletAddress); err != nil {
		return nil, apierror.FromDB(err, "vault not found for wallet")
	}

	f, err := s.files.Upsert(ctx, &models.File{
		ID:       in.FileID,
		VaultID:  in.VaultID,
		UploadID: in.UploadID,
		BlobID:   in.BlobID,
		Name:     in.Name,
		MimeType: in.MimeType,
		Size:     in.Size,
	})
	if err != nil {
		return nil, apierror.FromDB(err, "file not found")
	}

	s.log.Info("file recorded", "file_id", f.ID, "vault_id", f.VaultID, "blob_id", f.BlobID)
	return f, nil
}

// List returns a page of files with their NFT state. Pages are cached
// briefly, so a listing may trail a write by up to the cache TTL.
func (s *FileService) List(ctx context.Context, vaultID, walletAddress string, limit, offset int) (*FilePage, error) {
	if limit < 1 || limit > maxListLimit {
		return nil, apierror.Newf(apierror.KindValidation, "limit must be between 1 and %d", maxListLimit)
	}
	if offset < 0 {
		return nil, apierror.New(apierror.KindValidation, "offset must not be negative")
	}

	cacheKey := fmt.Sprintf("files:list:%s:%s:%d:%d", vaultID, walletAddress, limit, offset)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var page FilePage
			if err := json.Unmarshal([]byte(raw), &page); err == nil {
				return &page, nil
			}
		}
	}

	items, total, err := s.files.List(ctx, vaultID, walletAddress, limit, offset)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindDatabase, "failed to list files", err)
	}
	if items == nil {
		items = []*models.FileWithNFT{}
	}
	page := &FilePage{Items: items, Count: total}

	if s.cache != nil {
		if raw, err := json.Marshal(page); err == nil {
			if err := s.cache.SetWithExpiry(ctx, cacheKey, string(raw), fileListCacheTTL); err != nil {
				s.log.Warn("failed to cache file listing", "key", cacheKey, "error", err)
			}
		}
	}
	return page, nil
}
