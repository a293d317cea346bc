package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Vault is a named container in the storage subsystem
type Vault struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Encrypted bool   `json:"encrypted"`
}

// StorageFile is a stored object inside a vault
type StorageFile struct {
	ID       string `json:"id"`
	VaultID  string `json:"vaultId"`
	BlobID   string `json:"blobId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
}

// FileListing is the normalized result of a file list call
type FileListing struct {
	Items     []StorageFile
	NextToken string
}

// ListFilesOptions filters a file list call
type ListFilesOptions struct {
	VaultID   string
	UploadID  string
	Status    string
	Limit     int
	NextToken string
}

// StorageClient is a retry-free facade over the encrypted-storage HTTP API.
// Every operation logs start and outcome; failures propagate unchanged.
type StorageClient struct {
	http    *HTTPClient
	baseURL string
	apiKey  string
	logger  Logger
}

// NewStorageClient creates a storage client against the given API base URL
func NewStorageClient(httpClient *HTTPClient, baseURL, apiKey string, logger Logger) *StorageClient {
	return &StorageClient{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetupEncryption configures the account encrypter from a password.
// When the account has no key material yet it falls back to first-time
// password setup and retries.
func (c *StorageClient) SetupEncryption(ctx context.Context, password string) error {
	c.logger.Info("setting up encryption")

	err := c.addEncrypter(ctx, password)
	if err == nil {
		c.logger.Info("encryption setup successful")
		return nil
	}

	if !strings.Contains(err.Error(), "no keys found") {
		c.logger.Error("failed to setup encryption", "error", err)
		return err
	}

	c.logger.Info("no keys found, setting up password")
	if err := c.setupPassword(ctx, password); err != nil {
		c.logger.Error("failed to setup password", "error", err)
		return err
	}

	if err := c.addEncrypter(ctx, password); err != nil {
		c.logger.Error("failed to setup encryption after password setup", "error", err)
		return err
	}

	c.logger.Info("encryption setup successful")
	return nil
}

func (c *StorageClient) addEncrypter(ctx context.Context, password string) error {
	body, _ := json.Marshal(map[string]string{"password": password})
	resp, err := c.post(ctx, "/encrypters", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

func (c *StorageClient) setupPassword(ctx context.Context, password string) error {
	body, _ := json.Marshal(map[string]string{"password": password})
	resp, err := c.post(ctx, "/me/setup-password", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// CreateVault creates a private encrypted vault. When password is non-empty,
// encryption is set up first.
func (c *StorageClient) CreateVault(ctx context.Context, name, password string) (*Vault, error) {
	c.logger.Info("creating vault", "name", name)

	if password != "" {
		if err := c.SetupEncryption(ctx, password); err != nil {
			return nil, err
		}
	}

	body, _ := json.Marshal(map[string]any{"name": name, "encrypted": true})
	resp, err := c.post(ctx, "/vaults", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to create vault", "name", name, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var vault Vault
	if err := c.decode(resp, &vault); err != nil {
		c.logger.Error("failed to create vault", "name", name, "error", err)
		return nil, err
	}

	c.logger.Info("vault created", "vault_id", vault.ID, "name", vault.Name)
	return &vault, nil
}

// ListVaults lists all vaults for the current account
func (c *StorageClient) ListVaults(ctx context.Context) ([]Vault, error) {
	c.logger.Info("listing vaults")

	resp, err := c.get(ctx, "/vaults")
	if err != nil {
		c.logger.Error("failed to list vaults", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Items []Vault `json:"items"`
	}
	if err := c.decode(resp, &result); err != nil {
		c.logger.Error("failed to list vaults", "error", err)
		return nil, err
	}

	c.logger.Info("vaults retrieved", "count", len(result.Items))
	return result.Items, nil
}

// GetVault retrieves details of a single vault
func (c *StorageClient) GetVault(ctx context.Context, vaultID string) (*Vault, error) {
	c.logger.Info("getting vault", "vault_id", vaultID)

	resp, err := c.get(ctx, "/vaults/"+url.PathEscape(vaultID))
	if err != nil {
		c.logger.Error("failed to get vault", "vault_id", vaultID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var vault Vault
	if err := c.decode(resp, &vault); err != nil {
		c.logger.Error("failed to get vault", "vault_id", vaultID, "error", err)
		return nil, err
	}

	return &vault, nil
}

// UploadFile streams a file into a vault and returns the upload identifier
func (c *StorageClient) UploadFile(ctx context.Context, vaultID, name, mimeType string, data io.Reader) (string, error) {
	c.logger.Info("uploading file", "vault_id", vaultID, "name", name)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to copy upload data: %w", err)
	}
	if mimeType != "" {
		_ = writer.WriteField("mimeType", mimeType)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	path := "/vaults/" + url.PathEscape(vaultID) + "/uploads"
	resp, err := c.http.DoRequestWithHeaders(ctx, http.MethodPost, c.baseURL+path, &buf, map[string]string{
		"Api-Key":      c.apiKey,
		"Content-Type": writer.FormDataContentType(),
	})
	if err != nil {
		c.logger.Error("failed to upload file", "vault_id", vaultID, "error", err)
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		UploadID string `json:"uploadId"`
	}
	if err := c.decode(resp, &result); err != nil {
		c.logger.Error("failed to upload file", "vault_id", vaultID, "error", err)
		return "", err
	}

	c.logger.Info("file uploaded", "vault_id", vaultID, "upload_id", result.UploadID)
	return result.UploadID, nil
}

// ListFiles lists files matching the given filters. The API has returned a bare
// array, an items envelope, and a data envelope across versions; all three are
// normalized to FileListing.
func (c *StorageClient) ListFiles(ctx context.Context, opts ListFilesOptions) (*FileListing, error) {
	c.logger.Info("listing files", "vault_id", opts.VaultID, "limit", opts.Limit)

	query := url.Values{}
	if opts.VaultID != "" {
		query.Set("vaultId", opts.VaultID)
	}
	if opts.UploadID != "" {
		query.Set("uploadId", opts.UploadID)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.NextToken != "" {
		query.Set("nextToken", opts.NextToken)
	}

	path := "/files"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		c.logger.Error("failed to list files", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		c.logger.Error("failed to list files", "error", err)
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}

	listing, err := normalizeFileListing(raw)
	if err != nil {
		c.logger.Warn("could not determine file list shape, returning empty result", "error", err)
		return &FileListing{}, nil
	}

	c.logger.Info("files retrieved", "count", len(listing.Items), "has_more", listing.NextToken != "")
	return listing, nil
}

// GetFile retrieves file metadata
func (c *StorageClient) GetFile(ctx context.Context, fileID string) (*StorageFile, error) {
	c.logger.Info("getting file", "file_id", fileID)

	resp, err := c.get(ctx, "/files/"+url.PathEscape(fileID))
	if err != nil {
		c.logger.Error("failed to get file", "file_id", fileID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var file StorageFile
	if err := c.decode(resp, &file); err != nil {
		c.logger.Error("failed to get file", "file_id", fileID, "error", err)
		return nil, err
	}

	return &file, nil
}

// DownloadFile fetches the decrypted file payload
func (c *StorageClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	c.logger.Info("downloading file", "file_id", fileID)

	resp, err := c.get(ctx, "/files/"+url.PathEscape(fileID)+"/data")
	if err != nil {
		c.logger.Error("failed to download file", "file_id", fileID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		c.logger.Error("failed to download file", "file_id", fileID, "error", err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to download file", "file_id", fileID, "error", err)
		return nil, fmt.Errorf("failed to read file payload: %w", err)
	}

	c.logger.Info("file downloaded", "file_id", fileID, "size", len(data))
	return data, nil
}

// DeleteFile removes a file from its vault
func (c *StorageClient) DeleteFile(ctx context.Context, fileID string) error {
	c.logger.Info("deleting file", "file_id", fileID)

	resp, err := c.http.DoRequestWithHeaders(ctx, http.MethodDelete, c.baseURL+"/files/"+url.PathEscape(fileID), nil, c.headers())
	if err != nil {
		c.logger.Error("failed to delete file", "file_id", fileID, "error", err)
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		c.logger.Error("failed to delete file", "file_id", fileID, "error", err)
		return err
	}

	c.logger.Info("file deleted", "file_id", fileID)
	return nil
}

func (c *StorageClient) headers() map[string]string {
	return map[string]string{
		"Api-Key":      c.apiKey,
		"Content-Type": "application/json",
	}
}

func (c *StorageClient) get(ctx context.Context, path string) (*http.Response, error) {
	return c.http.DoRequestWithHeaders(ctx, http.MethodGet, c.baseURL+path, nil, c.headers())
}

func (c *StorageClient) post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.http.DoRequestWithHeaders(ctx, http.MethodPost, c.baseURL+path, body, c.headers())
}

func (c *StorageClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &apiResp); err == nil {
		if apiResp.Message != "" {
			msg = apiResp.Message
		} else if apiResp.Error != "" {
			msg = apiResp.Error
		}
	}

	return fmt.Errorf("storage API error (status %d): %s", resp.StatusCode, strings.ToLower(msg))
}

func (c *StorageClient) decode(resp *http.Response, v any) error {
	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode storage response: %w", err)
	}
	return nil
}

func normalizeFileListing(raw []byte) (*FileListing, error) {
	// Bare array
	var items []StorageFile
	if err := json.Unmarshal(raw, &items); err == nil {
		return &FileListing{Items: items}, nil
	}

	// Items or data envelope
	var envelope struct {
		Items     []StorageFile `json:"items"`
		Data      []StorageFile `json:"data"`
		NextToken string        `json:"nextToken"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unrecognized file list shape: %w", err)
	}

	if envelope.Items != nil {
		return &FileListing{Items: envelope.Items, NextToken: envelope.NextToken}, nil
	}
	if envelope.Data != nil {
		return &FileListing{Items: envelope.Data, NextToken: envelope.NextToken}, nil
	}

	return nil, fmt.Errorf("unrecognized file list shape")
}
