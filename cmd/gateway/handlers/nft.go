package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
)

// NFTHandler handles NFT metadata requests
type NFTHandler struct {
	components *bootstrap.Components
	nfts       *service.NFTService
}

// NewNFTHandler creates a new NFT handler
func NewNFTHandler(c *container.Container) *NFTHandler {
	return &NFTHandler{
		components: c.Components,
		nfts:       c.NFTService,
	}
}

// CreateNFT records minted NFT metadata against a file
// POST /api/nft/insert
func (h *NFTHandler) CreateNFT(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		NFTID       string `json:"nft_id"`
		FileID      string `json:"file_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       string `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.NFTID == "" || req.FileID == "" {
		return badRequest(c, "nft_id and file_id are required")
	}

	in := service.CreateNFTInput{
		NFTID:  req.NFTID,
		FileID: req.FileID,
	}
	if req.Name != "" {
		in.Name = &req.Name
	}
	if req.Description != "" {
		in.Description = &req.Description
	}
	if req.Price != "" {
		in.Price = &req.Price
	}

	h.components.Logger.Info("recording nft", "nft_id", req.NFTID, "file_id", req.FileID)

	nft, err := h.nfts.Create(ctx, in)
	if err != nil {
		h.components.Logger.Error("failed to record nft", "nft_id", req.NFTID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"nft":     nft,
	})
}
