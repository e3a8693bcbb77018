package config

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// CORSConfig allows credentialed requests from the configured client
// origins. CLIENT_ORIGIN may list several origins separated by commas.
func (c *Config) CORSConfig() middleware.CORSConfig {
	var origins []string
	for _, o := range strings.Split(c.ClientOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}
}

// AuthRateLimiter throttles credential endpoints per client IP.
func (c *Config) AuthRateLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(c.AuthRateLimit),
		Burst: c.AuthRateBurst,
	})
	return middleware.RateLimiter(store)
}

// SameSite maps COOKIE_SAME_SITE onto the net/http constant.
func (c *Config) SameSite() http.SameSite {
	switch c.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SecureCookies reports whether credential cookies carry the Secure flag.
// Browsers drop SameSite=None cookies without it, so none implies Secure
// outside production too.
func (c *Config) SecureCookies() bool {
	return c.IsProduction() || c.SameSite() == http.SameSiteNoneMode
}
