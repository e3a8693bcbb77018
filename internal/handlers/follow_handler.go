package handlers

import (
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow graph requests
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow routes. All of them require a session.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/requests", h.GetRequests)
	g.POST("/:followeeId", h.Follow)
	g.POST("/:followerId/accept", h.Accept)
	g.DELETE("/:followeeId", h.Unfollow)
}

// Follow proposes an edge from the caller to :followeeId. A new edge is 201,
// an existing one 200.
func (h *FollowHandler) Follow(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	followeeID, err := parseID(c, "followeeId")
	if err != nil {
		return err
	}

	follow, created, err := h.follows.Propose(c.Request().Context(), userID, followeeID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"follow": follow})
}

// Accept approves :followerId's pending request to follow the caller.
func (h *FollowHandler) Accept(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	followerID, err := parseID(c, "followerId")
	if err != nil {
		return err
	}

	follow, err := h.follows.Accept(c.Request().Context(), userID, followerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"follow": follow})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	followeeID, err := parseID(c, "followeeId")
	if err != nil {
		return err
	}

	if err := h.follows.Remove(c.Request().Context(), userID, followeeID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// GetRequests lists pending requests to follow the caller.
func (h *FollowHandler) GetRequests(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	requests, err := h.follows.PendingRequests(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}
