package handlers

import (
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/metrics"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth    *services.AuthService
	cookies CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// RegisterAuthRoutes registers authentication-related routes. limiter guards
// the credential endpoints; requireAuth guards /me.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, limiter, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register, limiter)
	g.POST("/login", h.Login, limiter)
	g.POST("/logout", h.Logout)
	g.POST("/refresh", h.Refresh)
	g.GET("/me", h.Me, requireAuth)
}

// Register handles local user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		metrics.RecordAuth("register", outcome(err))
		return err
	}
	metrics.RecordAuth("register", "success")

	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

// Login authenticates with email and password and sets both credential
// cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.RecordAuth("login", outcome(err))
		return err
	}
	metrics.RecordAuth("login", "success")

	h.cookies.setAccess(c, pair.Access)
	h.cookies.setRefresh(c, pair.Refresh)
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Logout clears the credential cookies. It succeeds whether or not the
// caller was logged in.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.clear(c)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Refresh issues a new access cookie from the refresh cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var raw string
	if cookie, err := c.Cookie(session.RefreshCookieName); err == nil {
		raw = cookie.Value
	}

	access, err := h.auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		metrics.RecordAuth("refresh", outcome(err))
		return err
	}
	metrics.RecordAuth("refresh", "success")

	h.cookies.setAccess(c, access)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := session.FromContext(c.Request().Context())
	if !ok {
		return apperr.Unauthenticated("Not authenticated")
	}

	user, err := h.auth.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func outcome(err error) string {
	if kind := apperr.KindOf(err); kind != apperr.KindInternal {
		return kind.String()
	}
	return "error"
}
