package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/handlers"
)

// RegisterTuskyRoutes registers vault and file metadata routes
func RegisterTuskyRoutes(e *echo.Echo, c *container.Container) {
	vaultHandler := handlers.NewVaultHandler(c)
	fileHandler := handlers.NewFileHandler(c)

	tusky := e.Group("/api/tusky")
	{
		tusky.POST("/vaults/create", vaultHandler.CreateVault) // POST /api/tusky/vaults/create
		tusky.GET("/files", fileHandler.ListFiles)             // GET /api/tusky/files?vaultId=...
		tusky.POST("/files/upload", fileHandler.SaveFile)      // POST /api/tusky/files/upload
	}
}
