package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/handlers"
)

// RegisterAuthRoutes registers the auth provider callback route
func RegisterAuthRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAuthHandler(c)

	e.GET("/auth/callback", h.Callback) // GET /auth/callback?code=...
}
