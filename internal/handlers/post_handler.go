package handlers

import (
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, feed *services.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

// RegisterPostRoutes registers post-related routes. Reads are public with an
// optional session; writes require one.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("", h.GetPosts, optionalAuth)
	g.GET("/:id", h.GetPost, optionalAuth)
	g.POST("", h.CreatePost, requireAuth)
	g.DELETE("/:id", h.DeletePost, requireAuth)
}

// GetPosts lists every post newest first with cursor pagination.
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, err := h.feed.Recent(c.Request().Context(), viewerFromContext(c), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"post": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.Get(c.Request().Context(), id, viewerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// DeletePost deletes a post owned by the caller together with its comments
// and likes.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
