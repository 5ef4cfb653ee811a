// Package cookie carries the session token between requests. It is the
// server-side half of the client credential cache: browsers get an HTTP-only
// cookie, other clients may send the token as a bearer header instead.
package cookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/portalauth/internal/config"
)

const DefaultCookieName = "_psid"

// Manager manages session cookies.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// ReadToken returns the session token from the cookie, falling back to an
// Authorization bearer header.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err == nil && strings.TrimSpace(token) != "" {
		return token, true
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if bearer, ok := strings.CutPrefix(header, "Bearer "); ok {
		bearer = strings.TrimSpace(bearer)
		if bearer != "" {
			return bearer, true
		}
	}
	return "", false
}

func (m *Manager) Set(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
