package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("", h.GetComments)
	g.POST("", h.CreateComment, requireAuth)
	g.DELETE("/:id", h.DeleteComment, requireAuth)
}

// GetComments lists the comments of ?postId oldest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := strconv.ParseUint(c.QueryParam("postId"), 10, 64)
	if err != nil || postID == 0 {
		return apperr.InvalidInput("postId query parameter is required")
	}

	comments, err := h.comments.List(c.Request().Context(), uint(postID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}

// DeleteComment deletes a comment written by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
