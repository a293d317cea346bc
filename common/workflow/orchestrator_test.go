package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walruspass/walruspass/common/clients"
	"github.com/walruspass/walruspass/common/logger"
	"github.com/walruspass/walruspass/common/policy"
)

type fakeStorage struct {
	setupCalls  int
	setupErr    error
	vaultErr    error
	uploadErr   error
	getFileErr  error
	uploadID    string
	blobID      string
	fileID      string
	lastVault   string
	lastUpload  string
	lastVaultID string
}

func (f *fakeStorage) SetupEncryption(ctx context.Context, password string) error {
	f.setupCalls++
	return f.setupErr
}

func (f *fakeStorage) CreateVault(ctx context.Context, name, password string) (*clients.Vault, error) {
	if f.vaultErr != nil {
		return nil, f.vaultErr
	}
	f.lastVault = name
	return &clients.Vault{ID: "vault-1", Name: name}, nil
}

func (f *fakeStorage) UploadFile(ctx context.Context, vaultID, name, mimeType string, data io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.lastVaultID = vaultID
	f.lastUpload = name
	return f.uploadID, nil
}

func (f *fakeStorage) GetFile(ctx context.Context, fileID string) (*clients.StorageFile, error) {
	if f.getFileErr != nil {
		return nil, f.getFileErr
	}
	return &clients.StorageFile{ID: f.fileID, BlobID: f.blobID}, nil
}

type fakeGateway struct {
	vaultErr   error
	saveErr    error
	nftErr     error
	savedFile  *clients.SaveFileRequest
	createdNFT *clients.CreateNFTRequest
	vaultCalls int
}

func (f *fakeGateway) CreateVault(ctx context.Context, name, vaultID, walletAddress string, encrypted bool) (*clients.VaultRecord, error) {
	f.vaultCalls++
	if f.vaultErr != nil {
		return nil, f.vaultErr
	}
	return &clients.VaultRecord{ID: vaultID, Name: name, WalletAddress: walletAddress, Encrypted: encrypted}, nil
}

func (f *fakeGateway) SaveFile(ctx context.Context, req clients.SaveFileRequest) (*clients.FileRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.savedFile = &req
	return &clients.FileRecord{ID: req.FileID}, nil
}

func (f *fakeGateway) CreateNFT(ctx context.Context, req clients.CreateNFTRequest) (*clients.NFTRecord, error) {
	if f.nftErr != nil {
		return nil, f.nftErr
	}
	f.createdNFT = &req
	return &clients.NFTRecord{ID: req.NFTID}, nil
}

type fakeChain struct {
	buildCalls  int
	execErr     error
	resolveErr  error
	digest      string
	objectID    string
	lastTx      *clients.Transaction
}

func (f *fakeChain) CreateMintTransaction(price uint64, blobID, name, description string) *clients.Transaction {
	f.buildCalls++
	tx := &clients.Transaction{
		Module:    "gatekeeper",
		Function:  "mint_and_list",
		Arguments: []any{blobID, name, description, price},
	}
	f.lastTx = tx
	return tx
}

func (f *fakeChain) ExecuteTransaction(ctx context.Context, tx *clients.Transaction, signer clients.Signer) (string, error) {
	if f.execErr != nil {
		return "", f.execErr
	}
	return f.digest, nil
}

func (f *fakeChain) ResolveCreatedObjectID(ctx context.Context, digest string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.objectID, nil
}

type allowAll struct{}

func (allowAll) Allows(policy.Listing) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Allows(policy.Listing) (bool, error) { return false, nil }

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

func newTestOrchestrator(pol Policy) (*Orchestrator, *fakeStorage, *fakeGateway, *fakeChain) {
	storage := &fakeStorage{uploadID: "upload-1", blobID: "blob-1", fileID: "file-1"}
	gateway := &fakeGateway{}
	chain := &fakeChain{digest: "digest-1", objectID: "0xnft"}
	session := Session{WalletAddress: "0xwallet"}
	o := New(session, storage, gateway, chain, pol, testLogger())
	return o, storage, gateway, chain
}

func runToMinting(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, o.Begin())
	require.NoError(t, o.SetupEncryption(ctx, "secret"))
	require.NoError(t, o.CreateVault(ctx, "my vault", true))
	require.NoError(t, o.UploadFile(ctx, "pass.png", "image/png", 42, strings.NewReader("data")))
	require.Equal(t, StepNftMinting, o.Step())
}

func TestBeginRequiresWallet(t *testing.T) {
	o := New(Session{}, &fakeStorage{}, &fakeGateway{}, &fakeChain{}, allowAll{}, testLogger())
	assert.ErrorIs(t, o.Begin(), ErrNotSignedIn)
	assert.Equal(t, StepAwaitingAuthentication, o.Step())
}

func TestBeginSkipsEncryptionWhenReady(t *testing.T) {
	storage := &fakeStorage{}
	o := New(Session{WalletAddress: "0xwallet", EncryptionReady: true},
		storage, &fakeGateway{}, &fakeChain{}, allowAll{}, testLogger())

	require.NoError(t, o.Begin())
	assert.Equal(t, StepVaultCreation, o.Step())
	assert.Zero(t, storage.setupCalls)
}

func TestOperationsEnforceStepOrder(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(allowAll{})
	ctx := context.Background()

	err := o.UploadFile(ctx, "pass.png", "image/png", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStepOrder)

	_, err = o.MintAndList(ctx, "pass", "", 100_000_000)
	assert.ErrorIs(t, err, ErrStepOrder)

	require.NoError(t, o.Begin())
	err = o.Begin()
	assert.ErrorIs(t, err, ErrStepOrder)
}

func TestCreateVaultRequiresPrivate(t *testing.T) {
	o, storage, gateway, _ := newTestOrchestrator(allowAll{})
	ctx := context.Background()

	require.NoError(t, o.Begin())
	require.NoError(t, o.SetupEncryption(ctx, "secret"))

	err := o.CreateVault(ctx, "my vault", false)
	assert.ErrorIs(t, err, ErrVaultMustBePrivate)
	assert.Empty(t, storage.lastVault)
	assert.Zero(t, gateway.vaultCalls)
	assert.Equal(t, StepVaultCreation, o.Step())
}

func TestHappyPath(t *testing.T) {
	o, storage, gateway, chain := newTestOrchestrator(allowAll{})
	ctx := context.Background()

	runToMinting(t, o)

	assert.Equal(t, "vault-1", o.VaultID())
	assert.Equal(t, "vault-1", storage.lastVaultID)
	require.NotNil(t, gateway.savedFile)
	assert.Equal(t, "file-1", gateway.savedFile.FileID)
	assert.Equal(t, "blob-1", gateway.savedFile.BlobID)
	assert.Equal(t, "0xwallet", gateway.savedFile.WalletAddress)

	result, err := o.MintAndList(ctx, "pass", "access pass", 200_000_000)
	require.NoError(t, err)

	assert.Equal(t, "digest-1", result.Digest)
	assert.Equal(t, "0xnft", result.ObjectID)
	assert.True(t, result.MetadataSaved)
	assert.Empty(t, result.Warning)
	assert.Equal(t, StepSuccess, o.Step())

	require.NotNil(t, gateway.createdNFT)
	assert.Equal(t, "0xnft", gateway.createdNFT.NFTID)
	assert.Equal(t, "file-1", gateway.createdNFT.FileID)
	assert.Equal(t, "200000000", gateway.createdNFT.Price)
	assert.Equal(t, 1, chain.buildCalls)
}

func TestFileIDFallsBackToUploadID(t *testing.T) {
	o, storage, gateway, _ := newTestOrchestrator(allowAll{})
	storage.fileID = ""

	runToMinting(t, o)

	require.NotNil(t, gateway.savedFile)
	assert.Equal(t, "upload-1", gateway.savedFile.FileID)
	assert.Equal(t, "upload-1", o.FileID())
}

func TestPolicyRejectionBuildsNoTransaction(t *testing.T) {
	o, _, _, chain := newTestOrchestrator(denyAll{})
	runToMinting(t, o)

	result, err := o.MintAndList(context.Background(), "pass", "", 1)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.Nil(t, result)
	assert.Zero(t, chain.buildCalls)
	assert.Equal(t, StepNftMinting, o.Step())
}

func TestMintMetadataFailureReturnsWarning(t *testing.T) {
	o, _, gateway, _ := newTestOrchestrator(allowAll{})
	gateway.nftErr = errors.New("gateway down")
	runToMinting(t, o)

	result, err := o.MintAndList(context.Background(), "pass", "", 100_000_000)
	require.NoError(t, err)

	assert.Equal(t, "digest-1", result.Digest)
	assert.Equal(t, "0xnft", result.ObjectID)
	assert.False(t, result.MetadataSaved)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, StepSuccess, o.Step())
}

func TestResolveFailureReturnsWarning(t *testing.T) {
	o, _, gateway, chain := newTestOrchestrator(allowAll{})
	chain.resolveErr = clients.ErrNoCreatedObject
	runToMinting(t, o)

	result, err := o.MintAndList(context.Background(), "pass", "", 100_000_000)
	require.NoError(t, err)

	assert.Equal(t, "digest-1", result.Digest)
	assert.Empty(t, result.ObjectID)
	assert.False(t, result.MetadataSaved)
	assert.NotEmpty(t, result.Warning)
	assert.Nil(t, gateway.createdNFT)
	assert.Equal(t, StepSuccess, o.Step())
}

func TestMintSubmissionFailureKeepsStep(t *testing.T) {
	o, _, _, chain := newTestOrchestrator(allowAll{})
	chain.execErr = errors.New("rpc timeout")
	runToMinting(t, o)

	_, err := o.MintAndList(context.Background(), "pass", "", 100_000_000)
	assert.Error(t, err)
	assert.Equal(t, StepNftMinting, o.Step())
}

func TestFailedStepDoesNotAdvance(t *testing.T) {
	o, storage, _, _ := newTestOrchestrator(allowAll{})
	storage.vaultErr = errors.New("storage down")
	ctx := context.Background()

	require.NoError(t, o.Begin())
	require.NoError(t, o.SetupEncryption(ctx, "secret"))

	err := o.CreateVault(ctx, "my vault", true)
	assert.Error(t, err)
	assert.Equal(t, StepVaultCreation, o.Step())

	// Retry succeeds after the failure clears
	storage.vaultErr = nil
	require.NoError(t, o.CreateVault(ctx, "my vault", true))
	assert.Equal(t, StepFileUpload, o.Step())
}

func TestReset(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(allowAll{})
	runToMinting(t, o)

	o.Reset()

	assert.Equal(t, StepVaultCreation, o.Step())
	assert.Empty(t, o.VaultID())
	assert.Empty(t, o.FileID())
}
