package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/walruspass/walruspass/common/clients"
	"github.com/walruspass/walruspass/common/logger"
	"github.com/walruspass/walruspass/common/policy"
)

// Step identifies the current position in the listing workflow
type Step string

const (
	StepAwaitingAuthentication Step = "awaiting_authentication"
	StepEncryptionSetup        Step = "encryption_setup"
	StepVaultCreation          Step = "vault_creation"
	StepFileUpload             Step = "file_upload"
	StepNftMinting             Step = "nft_minting"
	StepSuccess                Step = "success"
)

var (
	// ErrNotSignedIn is returned when the session has no wallet address
	ErrNotSignedIn = errors.New("wallet not connected")

	// ErrStepOrder is returned when an operation is invoked out of sequence
	ErrStepOrder = errors.New("operation not allowed in current step")

	// ErrBusy is returned when a step operation is already in flight
	ErrBusy = errors.New("another operation is in flight")

	// ErrVaultMustBePrivate is returned when vault creation is attempted
	// without the private toggle
	ErrVaultMustBePrivate = errors.New("vault must be private")

	// ErrPolicyViolation is returned when the listing policy rejects a mint
	// before any transaction is built
	ErrPolicyViolation = errors.New("listing rejected by policy")
)

// Storage is the encrypted-storage adapter surface the workflow needs
type Storage interface {
	SetupEncryption(ctx context.Context, password string) error
	CreateVault(ctx context.Context, name, password string) (*clients.Vault, error)
	UploadFile(ctx context.Context, vaultID, name, mimeType string, data io.Reader) (string, error)
	GetFile(ctx context.Context, fileID string) (*clients.StorageFile, error)
}

// Gateway is the metadata-persistence surface the workflow needs
type Gateway interface {
	CreateVault(ctx context.Context, name, vaultID, walletAddress string, encrypted bool) (*clients.VaultRecord, error)
	SaveFile(ctx context.Context, req clients.SaveFileRequest) (*clients.FileRecord, error)
	CreateNFT(ctx context.Context, req clients.CreateNFTRequest) (*clients.NFTRecord, error)
}

// Chain is the transaction-building surface the workflow needs
type Chain interface {
	CreateMintTransaction(price uint64, blobID, name, description string) *clients.Transaction
	ExecuteTransaction(ctx context.Context, tx *clients.Transaction, signer clients.Signer) (string, error)
	ResolveCreatedObjectID(ctx context.Context, digest string) (string, error)
}

// Policy gates minting; see common/policy
type Policy interface {
	Allows(listing policy.Listing) (bool, error)
}

// Session carries the authenticated wallet state. It is passed in explicitly
// so tests can substitute fakes without any ambient lookup.
type Session struct {
	WalletAddress   string
	EncryptionReady bool
	Signer          clients.Signer
}

// MintResult reports the outcome of the mint step. The on-chain effect is
// never rolled back: a metadata-save failure surfaces as Warning while Digest
// remains valid.
type MintResult struct {
	Digest        string
	ObjectID      string
	MetadataSaved bool
	Warning       string
}

// Orchestrator drives the listing workflow: encryption setup, vault creation,
// file upload, mint. Transitions are strictly forward and advance only when
// the preceding collaborator call succeeds. Step state lives in memory for
// the lifetime of one Orchestrator; there is no cross-process persistence.
type Orchestrator struct {
	session Session
	storage Storage
	gateway Gateway
	chain   Chain
	policy  Policy
	log     *logger.Logger

	mu   sync.Mutex
	busy bool
	step Step

	vaultID  string
	fileID   string
	uploadID string
	blobID   string
}

// New creates an orchestrator in the initial state
func New(session Session, storage Storage, gateway Gateway, chain Chain, pol Policy, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		session: session,
		storage: storage,
		gateway: gateway,
		chain:   chain,
		policy:  pol,
		log:     log,
		step:    StepAwaitingAuthentication,
	}
}

// Step returns the current workflow step
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// VaultID returns the vault created in this workflow, if any
func (o *Orchestrator) VaultID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vaultID
}

// FileID returns the file persisted in this workflow, if any
func (o *Orchestrator) FileID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fileID
}

// Begin verifies the session is signed in and moves past authentication.
// Encryption setup is bypassed entirely when the session already has
// encryption configured.
func (o *Orchestrator) Begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepAwaitingAuthentication {
		return fmt.Errorf("%w: step is %s", ErrStepOrder, o.step)
	}
	if o.session.WalletAddress == "" {
		return ErrNotSignedIn
	}

	if o.session.EncryptionReady {
		o.step = StepVaultCreation
	} else {
		o.step = StepEncryptionSetup
	}

	o.log.Info("workflow started",
		"wallet_address", o.session.WalletAddress,
		"step", string(o.step),
	)
	return nil
}

// SetupEncryption configures the storage encrypter from a password and
// advances to vault creation
func (o *Orchestrator) SetupEncryption(ctx context.Context, password string) error {
	if err := o.begin(StepEncryptionSetup); err != nil {
		return err
	}
	defer o.finish()

	if err := o.storage.SetupEncryption(ctx, password); err != nil {
		o.log.Error("encryption setup failed",
			"operation", "setup_encryption",
			"wallet_address", o.session.WalletAddress,
			"error", err,
		)
		return fmt.Errorf("setup encryption: %w", err)
	}

	o.mu.Lock()
	o.step = StepVaultCreation
	o.session.EncryptionReady = true
	o.mu.Unlock()
	return nil
}

// CreateVault creates an encrypted vault in storage, persists its record and
// advances to file upload. Only private vaults may proceed.
func (o *Orchestrator) CreateVault(ctx context.Context, name string, private bool) error {
	if err := o.begin(StepVaultCreation); err != nil {
		return err
	}
	defer o.finish()

	if !private {
		return ErrVaultMustBePrivate
	}

	vault, err := o.storage.CreateVault(ctx, name, "")
	if err != nil {
		o.log.Error("vault creation failed",
			"operation", "create_vault",
			"name", name,
			"error", err,
		)
		return fmt.Errorf("create vault: %w", err)
	}

	if _, err := o.gateway.CreateVault(ctx, name, vault.ID, o.session.WalletAddress, true); err != nil {
		o.log.Error("vault record persistence failed",
			"operation", "create_vault",
			"vault_id", vault.ID,
			"error", err,
		)
		return fmt.Errorf("persist vault: %w", err)
	}

	o.mu.Lock()
	o.vaultID = vault.ID
	o.mu.Unlock()

	o.advance(StepFileUpload)
	o.log.Info("vault created", "vault_id", vault.ID, "name", name)
	return nil
}

// UploadFile uploads one file into the workflow's vault, persists its record
// and advances to minting
func (o *Orchestrator) UploadFile(ctx context.Context, name, mimeType string, size int64, data io.Reader) error {
	if err := o.begin(StepFileUpload); err != nil {
		return err
	}
	defer o.finish()

	uploadID, err := o.storage.UploadFile(ctx, o.vaultID, name, mimeType, data)
	if err != nil {
		o.log.Error("file upload failed",
			"operation", "upload_file",
			"vault_id", o.vaultID,
			"error", err,
		)
		return fmt.Errorf("upload file: %w", err)
	}

	// Resolve the blob id assigned by the storage backend. The file id equals
	// the upload identifier in this system.
	meta, err := o.storage.GetFile(ctx, uploadID)
	if err != nil {
		o.log.Error("uploaded file lookup failed",
			"operation", "upload_file",
			"upload_id", uploadID,
			"error", err,
		)
		return fmt.Errorf("resolve uploaded file: %w", err)
	}

	fileID := meta.ID
	if fileID == "" {
		fileID = uploadID
	}

	if _, err := o.gateway.SaveFile(ctx, clients.SaveFileRequest{
		FileID:        fileID,
		UploadID:      uploadID,
		BlobID:        meta.BlobID,
		Name:          name,
		VaultID:       o.vaultID,
		WalletAddress: o.session.WalletAddress,
		MimeType:      mimeType,
		Size:          size,
	}); err != nil {
		o.log.Error("file record persistence failed",
			"operation", "upload_file",
			"file_id", fileID,
			"vault_id", o.vaultID,
			"error", err,
		)
		return fmt.Errorf("persist file: %w", err)
	}

	o.mu.Lock()
	o.fileID = fileID
	o.uploadID = uploadID
	o.blobID = meta.BlobID
	o.mu.Unlock()

	o.advance(StepNftMinting)
	o.log.Info("file uploaded", "file_id", fileID, "upload_id", uploadID, "vault_id", o.vaultID)
	return nil
}

// MintAndList mints an NFT for the uploaded file and records its metadata.
// Price is in smallest units (MIST). The listing policy is evaluated before
// any transaction is built. A metadata-save failure after a successful mint
// does not roll back the on-chain effect: it is logged and returned as a
// warning alongside the digest.
func (o *Orchestrator) MintAndList(ctx context.Context, name, description string, price uint64) (*MintResult, error) {
	if err := o.begin(StepNftMinting); err != nil {
		return nil, err
	}
	defer o.finish()

	allowed, err := o.policy.Allows(policy.Listing{Price: price, Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("evaluate listing policy: %w", err)
	}
	if !allowed {
		o.log.Warn("listing rejected by policy",
			"operation", "mint_nft",
			"price", price,
			"name", name,
		)
		return nil, ErrPolicyViolation
	}

	tx := o.chain.CreateMintTransaction(price, o.blobID, name, description)

	digest, err := o.chain.ExecuteTransaction(ctx, tx, o.session.Signer)
	if err != nil {
		o.log.Error("mint transaction failed",
			"operation", "mint_nft",
			"file_id", o.fileID,
			"error", err,
		)
		return nil, fmt.Errorf("submit mint transaction: %w", err)
	}

	result := &MintResult{Digest: digest}

	objectID, err := o.chain.ResolveCreatedObjectID(ctx, digest)
	if err != nil {
		// Mint already happened; only the metadata record is lost
		o.log.Error("created object resolution failed after mint",
			"operation", "mint_nft",
			"digest", digest,
			"error", err,
		)
		result.Warning = "mint succeeded but the created NFT could not be resolved; metadata was not saved"
		o.advance(StepSuccess)
		return result, nil
	}
	result.ObjectID = objectID

	if _, err := o.gateway.CreateNFT(ctx, clients.CreateNFTRequest{
		NFTID:       objectID,
		FileID:      o.fileID,
		Name:        name,
		Description: description,
		Price:       strconv.FormatUint(price, 10),
	}); err != nil {
		o.log.Error("nft record persistence failed after mint",
			"operation", "mint_nft",
			"nft_id", objectID,
			"file_id", o.fileID,
			"digest", digest,
			"error", err,
		)
		result.Warning = "mint succeeded but saving NFT metadata failed"
		o.advance(StepSuccess)
		return result, nil
	}

	result.MetadataSaved = true
	o.advance(StepSuccess)
	o.log.Info("nft minted and listed",
		"nft_id", objectID,
		"file_id", o.fileID,
		"digest", digest,
		"price", price,
	)
	return result, nil
}

// Reset clears per-step state and returns to the first actionable step
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.vaultID = ""
	o.fileID = ""
	o.uploadID = ""
	o.blobID = ""

	if o.session.WalletAddress == "" {
		o.step = StepAwaitingAuthentication
	} else if o.session.EncryptionReady {
		o.step = StepVaultCreation
	} else {
		o.step = StepEncryptionSetup
	}

	o.log.Info("workflow reset", "step", string(o.step))
}

// begin acquires the in-flight guard and checks step order
func (o *Orchestrator) begin(expected Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return ErrBusy
	}
	if o.step != expected {
		return fmt.Errorf("%w: step is %s, expected %s", ErrStepOrder, o.step, expected)
	}

	o.busy = true
	return nil
}

// finish releases the in-flight guard on every path
func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) advance(next Step) {
	o.mu.Lock()
	o.step = next
	o.mu.Unlock()
}
