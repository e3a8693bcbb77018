package handlers

import (
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/:postId/toggle", h.ToggleLike)
}

// ToggleLike likes the post if the caller has not, and unlikes it otherwise.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	result, err := h.likes.Toggle(c.Request().Context(), userID, postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
