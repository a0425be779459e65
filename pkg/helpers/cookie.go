package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// RefreshCookiePath limits the refresh token to the auth routes.
	RefreshCookiePath = "/auth"
)

// TokenCookies writes the access/refresh pair as HttpOnly cookies.
type TokenCookies struct {
	Domain string
	Secure bool
}

func NewTokenCookies(domain string, secure bool) *TokenCookies {
	return &TokenCookies{Domain: domain, Secure: secure}
}

// SetPair sets both cookies; each lives until its token expires.
func (m *TokenCookies) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, refresh, maxAgeFrom(rexp), RefreshCookiePath, m.Domain, m.Secure, true)
}

// Clear expires both cookies on the paths they were set with.
func (m *TokenCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, RefreshCookiePath, m.Domain, m.Secure, true)
}

// Refresh returns the refresh cookie value, or "" if absent.
func (m *TokenCookies) Refresh(c *gin.Context) string {
	v, err := c.Cookie(RefreshCookie)
	if err != nil {
		return ""
	}
	return v
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
