package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
)

// VaultHandler handles vault metadata requests
type VaultHandler struct {
	components *bootstrap.Components
	vaults     *service.VaultService
}

// NewVaultHandler creates a new vault handler
func NewVaultHandler(c *container.Container) *VaultHandler {
	return &VaultHandler{
		components: c.Components,
		vaults:     c.VaultService,
	}
}

// CreateVault records a vault for a wallet; replays return the existing row
// POST /api/tusky/vaults/create
func (h *VaultHandler) CreateVault(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		VaultID       string `json:"vault_id"`
		Name          string `json:"name"`
		WalletAddress string `json:"wallet_address"`
		Encrypted     bool   `json:"encrypted"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.VaultID == "" || req.Name == "" || req.WalletAddress == "" {
		return badRequest(c, "vault_id, name and wallet_address are required")
	}

	h.components.Logger.Info("recording vault",
		"vault_id", req.VaultID,
		"wallet_address", req.WalletAddress)

	vault, err := h.vaults.Create(ctx, req.VaultID, req.Name, req.WalletAddress, req.Encrypted)
	if err != nil {
		h.components.Logger.Error("failed to record vault", "vault_id", req.VaultID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"vault":   vault,
	})
}
