package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/walruspass/walruspass/common/apierror"
)

// respondError maps a service error to the JSON error envelope. Tagged errors
// carry their own kind; anything else reads as an internal failure.
func respondError(c echo.Context, err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return c.JSON(apierror.HTTPStatus(apiErr.Kind), map[string]interface{}{
			"error": apiErr.Message,
			"kind":  string(apiErr.Kind),
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": "internal error",
		"kind":  string(apierror.KindUnknown),
	})
}

// badRequest is for request-shape failures caught before the service layer
func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": message,
		"kind":  string(apierror.KindValidation),
	})
}
