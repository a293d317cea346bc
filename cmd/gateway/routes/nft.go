package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/handlers"
)

// RegisterNFTRoutes registers NFT metadata routes
func RegisterNFTRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewNFTHandler(c)

	nft := e.Group("/api/nft")
	{
		nft.POST("/insert", h.CreateNFT) // POST /api/nft/insert
	}
}
