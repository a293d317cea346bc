package service

import (
	"context"

	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/logger"
)

// NFTRepo is the persistence surface the NFT service needs
type NFTRepo interface {
	Upsert(ctx context.Context, n *models.NFT) (*models.NFT, error)
	GetByID(ctx context.Context, id string) (*models.NFT, error)
}

// FileReader checks that the referenced file record exists
type FileReader interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
}

// CreateNFTInput carries metadata for a freshly minted NFT
type CreateNFTInput struct {
	NFTID       string
	FileID      string
	Name        *string
	Description *string
	Price       *string
}

type NFTService struct {
	nfts  NFTRepo
	files FileReader
	log   *logger.Logger
}

func NewNFTService(nfts NFTRepo, files FileReader, log *logger.Logger) *NFTService {
	return &NFTService{nfts: nfts, files: files, log: log}
}

// Create records NFT metadata against an existing file record
func (s *NFTService) Create(ctx context.Context, in CreateNFTInput) (*models.NFT, error) {
	if in.NFTID == "" || in.FileID == "" {
		return nil, apierror.New(apierror.KindValidation, "nft id and file id are required")
	}

	if _, err := s.files.GetByID(ctx, in.FileID); err != nil {
		return nil, apierror.FromDB(err, "file not found")
	}

	n, err := s.nfts.Upsert(ctx, &models.NFT{
		ID:          in.NFTID,
		FileID:      in.FileID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	})
	if err != nil {
		return nil, apierror.FromDB(err, "nft not found")
	}

	s.log.Info("nft recorded", "nft_id", n.ID, "file_id", n.FileID)
	return n, nil
}
