package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/handlers"
	"github.com/walruspass/walruspass/cmd/gateway/middleware"
)

// RegisterProfileRoutes registers profile read and update routes
func RegisterProfileRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewProfileHandler(c)
	secret := []byte(c.Components.Config.Auth.JWTSecret)

	profile := e.Group("/api/profile")
	{
		profile.GET("", h.GetProfile)                                              // GET /api/profile?userId=...
		profile.PUT("/update", h.UpdateProfile, middleware.RequireAuth(secret))    // PUT /api/profile/update
	}
}
