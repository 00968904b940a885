// Package session holds the per-browser dashboard session and the stores
// that persist it between requests.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/models"
	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/labstack/echo/v4"
)

// ErrInvalidSession is returned alongside a fresh session when the request
// carried a cookie that could not be decoded.
var ErrInvalidSession = errors.New("session: invalid cookie")

// Session is the state kept for one browser. A new session is unauthenticated.
type Session struct {
	ID            string                `json:"-"`
	Authenticated bool                  `json:"authenticated"`
	Flashes       []models.Notification `json:"flashes,omitempty"`

	previousID string
}

// Store loads and persists sessions
type Store interface {
	// Get returns the session for the request. It never returns nil; on
	// ErrInvalidSession the returned session is a fresh one.
	Get(c echo.Context) (*Session, error)
	Save(c echo.Context, s *Session) error
	Destroy(c echo.Context) error
}

// AddFlash queues a notification for the next rendered page
func (s *Session) AddFlash(n models.Notification) {
	s.Flashes = append(s.Flashes, n)
}

// PopFlashes returns the queued notifications and clears them
func (s *Session) PopFlashes() []models.Notification {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Regenerate drops the session ID so the next Save issues a new one.
func (s *Session) Regenerate() {
	if s.ID != "" {
		s.previousID = s.ID
	}
	s.ID = ""
}

// FromContext returns the session the auth middleware stored on c
func FromContext(c echo.Context) (*Session, bool) {
	s, ok := c.Get(utils.ContextKeySession).(*Session)
	return s, ok && s != nil
}

func setCookie(c echo.Context, value string, ttl time.Duration) {
	cookie := newCookie(c)
	cookie.Value = value
	cookie.Expires = time.Now().Add(ttl)
	cookie.MaxAge = int(ttl.Seconds())
	c.SetCookie(cookie)
}

func clearCookie(c echo.Context) {
	cookie := newCookie(c)
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func newCookie(c echo.Context) *http.Cookie {
	return &http.Cookie{
		Name:     utils.CookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   IsSecureRequest(c),
	}
}

// IsSecureRequest reports whether the request arrived over TLS, directly or
// through a proxy that set X-Forwarded-Proto.
func IsSecureRequest(c echo.Context) bool {
	req := c.Request()
	if req.TLS != nil {
		return true
	}

	return strings.EqualFold(req.Header.Get("X-Forwarded-Proto"), "https")
}
