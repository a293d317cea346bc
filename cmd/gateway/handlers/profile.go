package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/middleware"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
)

// ProfileHandler handles profile read and update requests
type ProfileHandler struct {
	components *bootstrap.Components
	profiles   *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(c *container.Container) *ProfileHandler {
	return &ProfileHandler{
		components: c.Components,
		profiles:   c.ProfileService,
	}
}

// GetProfile retrieves a profile by user id
// GET /api/profile?userId=...
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("userId")

	if userID == "" {
		return badRequest(c, "userId is required")
	}

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		h.components.Logger.Error("failed to get profile", "user_id", userID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's display name and avatar
// PUT /api/profile/update (multipart form: display_name, avatar)
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.GetUserID(c)

	var displayName *string
	if v := c.FormValue("display_name"); v != "" {
		displayName = &v
	}

	var avatar *service.AvatarUpload
	if fileHeader, err := c.FormFile("avatar_file"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "failed to read avatar file")
		}
		defer src.Close()

		avatar = &service.AvatarUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        src,
		}
	}

	if displayName == nil && avatar == nil {
		return badRequest(c, "nothing to update")
	}

	profile, err := h.profiles.Update(ctx, userID, displayName, avatar)
	if err != nil {
		h.components.Logger.Error("failed to update profile", "user_id", userID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}
