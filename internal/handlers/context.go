package handlers

import (
	"strconv"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user's id. Routes using it
// sit behind RequireSession, so a missing identity is still reported as
// Unauthenticated rather than trusted.
func getUserIDFromContext(c echo.Context) (uint, error) {
	id, ok := session.FromContext(c.Request().Context())
	if !ok {
		return 0, apperr.Unauthenticated("Not authenticated")
	}
	return id.ID, nil
}

// viewerFromContext returns the optional viewer id, nil for anonymous
// requests.
func viewerFromContext(c echo.Context) *uint {
	id, ok := session.FromContext(c.Request().Context())
	if !ok {
		return nil
	}
	return &id.ID
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("Invalid " + name)
	}
	return uint(id), nil
}

// bindAndValidate decodes the request body into req and runs the echo
// validator over it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.InvalidInput("Invalid request payload")
	}
	return c.Validate(req)
}
