package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/Pakhtun2017/compliance-checker/internal/models"
	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	sessions session.Store
	password string
	log      zerolog.Logger
}

func NewAuthHandler(sessions session.Store, password string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		password: password,
		log:      log,
	}
}

// LoginPage renders the login view
func (h *AuthHandler) LoginPage(c echo.Context) error {
	// Already logged in: go straight to the dashboard
	if sess, err := h.sessions.Get(c); err == nil && sess.Authenticated {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "login", loginData(c, nil))
}

// Login handles the form submission. The password is compared verbatim,
// without trimming.
func (h *AuthHandler) Login(c echo.Context) error {
	password := c.FormValue("password")

	if !h.checkPassword(password) {
		h.log.Warn().Str("remote_ip", c.RealIP()).Msg("login rejected")
		return c.Render(http.StatusOK, "login", loginData(c, []models.Notification{
			models.Error("Invalid password."),
		}))
	}

	// An undecodable cookie still yields a usable fresh session
	sess, err := h.sessions.Get(c)
	if err != nil && !errors.Is(err, session.ErrInvalidSession) {
		h.log.Error().Err(err).Msg("load session failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Session store unavailable")
	}

	sess.Regenerate()
	sess.Authenticated = true
	if err := h.sessions.Save(c, sess); err != nil {
		h.log.Error().Err(err).Msg("save session failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	h.log.Info().Str("remote_ip", c.RealIP()).Msg("login succeeded")
	return Redirect(c, "/")
}

// Logout clears the session
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Warn().Err(err).Msg("destroy session failed")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) == 1
}

func loginData(c echo.Context, notifications []models.Notification) map[string]interface{} {
	return map[string]interface{}{
		"CSRF":          CSRFToken(c),
		"Notifications": notifications,
	}
}
