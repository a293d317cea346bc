package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/logger"
)

type fakeNFTRepo struct {
	nfts map[string]*models.NFT
}

func newFakeNFTRepo() *fakeNFTRepo { return &fakeNFTRepo{nfts: make(map[string]*models.NFT)} }

func (r *fakeNFTRepo) Upsert(ctx context.Context, n *models.NFT) (*models.NFT, error) {
	r.nfts[n.ID] = n
	return n, nil
}

func (r *fakeNFTRepo) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	if n, ok := r.nfts[id]; ok {
		return n, nil
	}
	return nil, pgx.ErrNoRows
}

func TestNFTCreateValidation(t *testing.T) {
	svc := NewNFTService(newFakeNFTRepo(), newFakeFileRepo(), logger.New("error", "text"))

	_, err := svc.Create(context.Background(), CreateNFTInput{FileID: "file-1"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = svc.Create(context.Background(), CreateNFTInput{NFTID: "0xnft"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestNFTCreateUnknownFileReadsAsNotFound(t *testing.T) {
	svc := NewNFTService(newFakeNFTRepo(), newFakeFileRepo(), logger.New("error", "text"))

	_, err := svc.Create(context.Background(), CreateNFTInput{NFTID: "0xnft", FileID: "missing"})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestNFTCreate(t *testing.T) {
	files := newFakeFileRepo()
	files.files["file-1"] = &models.File{ID: "file-1", VaultID: "vault-1"}

	repo := newFakeNFTRepo()
	svc := NewNFTService(repo, files, logger.New("error", "text"))

	name := "pass"
	price := "200000000"
	n, err := svc.Create(context.Background(), CreateNFTInput{
		NFTID:  "0xnft",
		FileID: "file-1",
		Name:   &name,
		Price:  &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xnft", n.ID)
	assert.Equal(t, "file-1", n.FileID)
	require.NotNil(t, n.Price)
	assert.Equal(t, "200000000", *n.Price)
}

func TestNFTCreateReplayOverwrites(t *testing.T) {
	files := newFakeFileRepo()
	files.files["file-1"] = &models.File{ID: "file-1"}

	repo := newFakeNFTRepo()
	svc := NewNFTService(repo, files, logger.New("error", "text"))

	first := "first"
	_, err := svc.Create(context.Background(), CreateNFTInput{NFTID: "0xnft", FileID: "file-1", Name: &first})
	require.NoError(t, err)

	second := "second"
	n, err := svc.Create(context.Background(), CreateNFTInput{NFTID: "0xnft", FileID: "file-1", Name: &second})
	require.NoError(t, err)
	require.NotNil(t, n.Name)
	assert.Equal(t, "second", *n.Name)
}
