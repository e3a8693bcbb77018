package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/blobstore"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves blobs held by a backend this process can read from.
type MediaHandler struct {
	blobs blobstore.Opener
}

func NewMediaHandler(blobs blobstore.Opener) *MediaHandler {
	return &MediaHandler{blobs: blobs}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/*", h.GetMedia)
}

// GetMedia streams the object whose key is the rest of the path.
func (h *MediaHandler) GetMedia(c echo.Context) error {
	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || strings.Contains(key, "..") {
		return apperr.NotFound("Media not found")
	}

	rc, contentType, err := h.blobs.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return apperr.NotFound("Media not found")
		}
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	c.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")
	return c.Stream(http.StatusOK, contentType, rc)
}
