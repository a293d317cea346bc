package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// FileHandler handles file metadata requests
type FileHandler struct {
	components *bootstrap.Components
	files      *service.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(c *container.Container) *FileHandler {
	return &FileHandler{
		components: c.Components,
		files:      c.FileService,
	}
}

// SaveFile records file metadata after an upload
// POST /api/tusky/files/upload
func (h *FileHandler) SaveFile(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		FileID        string `json:"file_id"`
		UploadID      string `json:"upload_id"`
		BlobID        string `json:"blob_id"`
		Name          string `json:"name"`
		VaultID       string `json:"vault_id"`
		WalletAddress string `json:"wallet_address"`
		MimeType      string `json:"mime_type"`
		Size          int64  `json:"size"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UploadID == "" || req.BlobID == "" || req.Name == "" || req.VaultID == "" || req.WalletAddress == "" {
		return badRequest(c, "upload_id, blob_id, name, vault_id and wallet_address are required")
	}

	in := service.SaveFileInput{
		FileID:        req.FileID,
		UploadID:      req.UploadID,
		BlobID:        req.BlobID,
		Name:          req.Name,
		VaultID:       req.VaultID,
		WalletAddress: req.WalletAddress,
	}
	if req.MimeType != "" {
		in.MimeType = &req.MimeType
	}
	if req.Size > 0 {
		in.Size = &req.Size
	}

	file, err := h.files.Save(ctx, in)
	if err != nil {
		h.components.Logger.Error("failed to record file",
			"upload_id", req.UploadID,
			"vault_id", req.VaultID,
			"error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"file":    file,
	})
}

// ListFiles returns a page of files with their NFT state
// GET /api/tusky/files?vaultId=...&wallet_address=...&limit=100&offset=0
func (h *FileHandler) ListFiles(c echo.Context) error {
	ctx := c.Request().Context()

	vaultID := c.QueryParam("vaultId")
	walletAddress := c.QueryParam("wallet_address")

	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxListLimit {
			return badRequest(c, "limit must be a number between 1 and 1000")
		}
		limit = v
	}

	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return badRequest(c, "offset must be a non-negative number")
		}
		offset = v
	}

	page, err := h.files.List(ctx, vaultID, walletAddress, limit, offset)
	if err != nil {
		h.components.Logger.Error("failed to list files", "vault_id", vaultID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}
