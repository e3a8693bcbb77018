package handlers

import (
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles user directory and profile requests
type UserHandler struct {
	users   *services.UserService
	follows *services.FollowService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, follows *services.FollowService) *UserHandler {
	return &UserHandler{users: users, follows: follows}
}

// RegisterUserRoutes registers user routes. All of them require a session.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.ListUsers)
	g.PUT("/me", h.UpdateProfile)
	g.POST("/avatar", h.SetAvatar)
	g.POST("/avatar/upload", h.UploadAvatar)
	g.GET("/:id/followers", h.GetFollowers)
	g.GET("/:id/following", h.GetFollowing)
}

// ListUsers lists everyone but the caller with the caller's follow status
// towards each. ?q filters by handle or name.
func (h *UserHandler) ListUsers(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	users, err := h.users.Directory(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// SetAvatar sets the avatar to an externally hosted URL.
func (h *UserHandler) SetAvatar(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.SetAvatarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.SetAvatarURL(c.Request().Context(), userID, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UploadAvatar accepts a multipart "file" field and stores it as the avatar.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.InvalidInput("file is required")
	}
	if fh.Size > services.MaxAvatarBytes {
		return apperr.InvalidInput("Avatar must be at most 5 MiB")
	}

	file, err := fh.Open()
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "Could not read upload")
	}
	defer file.Close()

	user, err := h.users.UploadAvatar(c.Request().Context(), userID, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) GetFollowers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	users, err := h.follows.Followers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) GetFollowing(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	users, err := h.follows.Following(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
