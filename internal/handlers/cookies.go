package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// CookieConfig controls the attributes of the credential cookies.
type CookieConfig struct {
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) setAccess(c echo.Context, token string) {
	c.SetCookie(cc.cookie(session.AccessCookieName, token, int(cc.AccessTTL.Seconds())))
}

func (cc CookieConfig) setRefresh(c echo.Context, token string) {
	c.SetCookie(cc.cookie(session.RefreshCookieName, token, int(cc.RefreshTTL.Seconds())))
}

// clear expires both credential cookies.
func (cc CookieConfig) clear(c echo.Context) {
	c.SetCookie(cc.cookie(session.AccessCookieName, "", -1))
	c.SetCookie(cc.cookie(session.RefreshCookieName, "", -1))
}

func (cc CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.SameSite,
	}
}
