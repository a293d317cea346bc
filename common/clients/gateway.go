package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/walruspass/walruspass/common/apierror"
)

// VaultRecord is a persisted vault row
type VaultRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WalletAddress string `json:"wallet_address"`
	Encrypted     bool   `json:"encrypted"`
}

// NFTRef is the optional NFT attached to a file listing entry
type NFTRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Price string `json:"price,omitempty"`
}

// FileRecord is a persisted file row
type FileRecord struct {
	ID       string  `json:"id"`
	VaultID  string  `json:"vault_id"`
	UploadID string  `json:"upload_id"`
	BlobID   string  `json:"blob_id"`
	Name     string  `json:"name"`
	MimeType string  `json:"mime_type,omitempty"`
	Size     int64   `json:"size,omitempty"`
	NFT      *NFTRef `json:"nft,omitempty"`
}

// FilePage is one page of file records
type FilePage struct {
	Items []FileRecord `json:"items"`
	Count int          `json:"count"`
}

// NFTRecord is a persisted NFT row
type NFTRecord struct {
	ID          string `json:"id"`
	FileID      string `json:"file_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

// ProfileRecord is a persisted profile row
type ProfileRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// SaveFileRequest carries the identifiers produced by a successful upload
type SaveFileRequest struct {
	FileID        string `json:"file_id"`
	UploadID      string `json:"upload_id"`
	BlobID        string `json:"blob_id"`
	Name          string `json:"name"`
	VaultID       string `json:"vault_id"`
	WalletAddress string `json:"wallet_address"`
	MimeType      string `json:"mime_type,omitempty"`
	Size          int64  `json:"size,omitempty"`
}

// CreateNFTRequest carries a minted NFT's metadata
type CreateNFTRequest struct {
	NFTID       string `json:"nft_id"`
	FileID      string `json:"file_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

// GatewayClient calls the metadata gateway HTTP API. All failures come back as
// *apierror.Error so callers branch on kind instead of status codes.
type GatewayClient struct {
	http    *HTTPClient
	baseURL string
	logger  Logger
}

// NewGatewayClient creates a gateway client against the given base URL
func NewGatewayClient(httpClient *HTTPClient, baseURL string, logger Logger) *GatewayClient {
	return &GatewayClient{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// CreateVault persists a vault record; idempotent on (vault_id, wallet_address)
func (c *GatewayClient) CreateVault(ctx context.Context, name, vaultID, walletAddress string, encrypted bool) (*VaultRecord, error) {
	body := map[string]any{
		"name":           name,
		"vault_id":       vaultID,
		"wallet_address": walletAddress,
		"encrypted":      encrypted,
	}

	var result struct {
		Vault VaultRecord `json:"vault"`
	}
	if err := c.postJSON(ctx, "/api/tusky/vaults/create", body, &result); err != nil {
		return nil, err
	}
	return &result.Vault, nil
}

// SaveFile persists a file record
func (c *GatewayClient) SaveFile(ctx context.Context, req SaveFileRequest) (*FileRecord, error) {
	var result struct {
		File FileRecord `json:"file"`
	}
	if err := c.postJSON(ctx, "/api/tusky/files/upload", req, &result); err != nil {
		return nil, err
	}
	return &result.File, nil
}

// CreateNFT persists an NFT record
func (c *GatewayClient) CreateNFT(ctx context.Context, req CreateNFTRequest) (*NFTRecord, error) {
	var result struct {
		NFT NFTRecord `json:"nft"`
	}
	if err := c.postJSON(ctx, "/api/nft/insert", req, &result); err != nil {
		return nil, err
	}
	return &result.NFT, nil
}

// ListFiles fetches a page of file records with optional NFT references
func (c *GatewayClient) ListFiles(ctx context.Context, vaultID, walletAddress string, limit, offset int) (*FilePage, error) {
	query := url.Values{}
	if vaultID != "" {
		query.Set("vaultId", vaultID)
	}
	if walletAddress != "" {
		query.Set("wallet_address", walletAddress)
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page FilePage
	if err := c.getJSON(ctx, "/api/tusky/files?"+query.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProfile fetches a profile by user id
func (c *GatewayClient) GetProfile(ctx context.Context, userID string) (*ProfileRecord, error) {
	var profile ProfileRecord
	if err := c.getJSON(ctx, "/api/profile?userId="+url.QueryEscape(userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *GatewayClient) postJSON(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apierror.Wrap(apierror.KindUnknown, "failed to encode request", err)
	}

	resp, err := c.http.DoRequestWithHeaders(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return apierror.Wrap(apierror.KindNetwork, "gateway request failed", err)
	}
	defer resp.Body.Close()

	return c.decode(resp, result)
}

func (c *GatewayClient) getJSON(ctx context.Context, path string, result any) error {
	resp, err := c.http.DoRequest(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apierror.Wrap(apierror.KindNetwork, "gateway request failed", err)
	}
	defer resp.Body.Close()

	return c.decode(resp, result)
}

func (c *GatewayClient) decode(resp *http.Response, result any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if result == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return apierror.Wrap(apierror.KindUnknown, "failed to decode gateway response", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	_ = json.Unmarshal(raw, &errResp)

	message := errResp.Error
	if message == "" {
		message = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
	}

	kind := apierror.Kind(errResp.Kind)
	if errResp.Kind == "" {
		kind = kindFromStatus(resp.StatusCode)
	}

	c.logger.Error("gateway call failed", "status", resp.StatusCode, "kind", string(kind), "message", message)
	return apierror.New(kind, message)
}

func kindFromStatus(status int) apierror.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apierror.KindValidation
	case http.StatusUnauthorized:
		return apierror.KindUnauthorized
	case http.StatusForbidden:
		return apierror.KindForbidden
	case http.StatusNotFound:
		return apierror.KindNotFound
	default:
		return apierror.KindUnknown
	}
}
