package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/auth"
	"github.com/walruspass/walruspass/common/apierror"
)

const (
	userIDContextKey = "user_id"

	// SessionCookieName is the cookie set by the auth callback
	SessionCookieName = "session_token"
)

// RequireAuth validates the session token from the Authorization header or
// the session cookie and stores the user id on the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				if cookie, err := c.Cookie(SessionCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				return unauthorized(c, "authentication required")
			}

			userID, err := auth.GetUserIDFromToken(secret, token)
			if err != nil {
				return unauthorized(c, "invalid session token")
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id set by RequireAuth
func GetUserID(c echo.Context) string {
	if v, ok := c.Get(userIDContextKey).(string); ok {
		return v
	}
	return ""
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"error": message,
		"kind":  string(apierror.KindUnauthorized),
	})
}
