package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/middleware"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
)

// AuthHandler handles the auth provider callback
type AuthHandler struct {
	components *bootstrap.Components
	auth       *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(c *container.Container) *AuthHandler {
	return &AuthHandler{
		components: c.Components,
		auth:       c.AuthService,
	}
}

// Callback redeems the provider code, sets the session cookie and redirects.
// The redirect happens even when the exchange fails so the browser never
// lands on a bare error page; the failure is logged server-side.
// GET /auth/callback?code=...
func (h *AuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.QueryParam("code")
	redirectTo := h.components.Config.Auth.RedirectAfter

	if code == "" {
		h.components.Logger.Warn("auth callback without code")
		return c.Redirect(http.StatusFound, redirectTo)
	}

	token, err := h.auth.ExchangeCode(ctx, code)
	if err != nil {
		h.components.Logger.Error("auth code exchange failed", "error", err)
		return c.Redirect(http.StatusFound, redirectTo)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.components.Config.Auth.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, redirectTo)
}
