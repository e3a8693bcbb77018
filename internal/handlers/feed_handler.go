package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/odinbook/backend/internal/metrics"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("", h.GetFeed)
}

// GetFeed returns the caller's home feed: their own posts and those of
// accepted followees, newest first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	page, err := h.feed.Feed(c.Request().Context(), userID, pageFromQuery(c))
	if err != nil {
		return err
	}
	metrics.RecordFeedPage(len(page.Posts))

	return c.JSON(http.StatusOK, page)
}

// pageFromQuery reads ?limit and ?cursor. A missing or non-numeric limit
// falls back to the default page size.
func pageFromQuery(c echo.Context) services.Page {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.Page{Limit: limit, Cursor: c.QueryParam("cursor")}
}
