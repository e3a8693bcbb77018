package middleware

import (
	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/anonto42/odinbook/backend/internal/tokens"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies signed credentials.
type TokenVerifier interface {
	Verify(kind tokens.Kind, raw string) (*tokens.Claims, error)
}

// RequireSession rejects requests without a valid access cookie and attaches
// the caller's identity to the request context otherwise.
func RequireSession(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.AccessCookieName)
			if err != nil || cookie.Value == "" {
				return apperr.Unauthenticated("Missing access token")
			}

			claims, err := verifier.Verify(tokens.Access, cookie.Value)
			if err != nil {
				return apperr.Unauthenticated("Invalid or expired token")
			}

			attachIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalSession attaches the caller's identity when a valid access cookie
// is present. Missing or invalid cookies are ignored.
func OptionalSession(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.AccessCookieName)
			if err == nil && cookie.Value != "" {
				if claims, err := verifier.Verify(tokens.Access, cookie.Value); err == nil {
					attachIdentity(c, claims)
				}
			}
			return next(c)
		}
	}
}

func attachIdentity(c echo.Context, claims *tokens.Claims) {
	req := c.Request()
	ctx := session.WithIdentity(req.Context(), session.Identity{ID: claims.UserID, Email: claims.Email})
	c.SetRequest(req.WithContext(ctx))
}
