package handlers

import (
	"net/http"

	"github.com/Pakhtun2017/compliance-checker/internal/middleware"
	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/labstack/echo/v4"
)

// GetSession retrieves the authenticated session placed in the context by
// the auth middleware
func GetSession(c echo.Context) (*session.Session, error) {
	sess, ok := session.FromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return sess, nil
}

// GetSessionOrRedirect retrieves the session or redirects to login
func GetSessionOrRedirect(c echo.Context) (*session.Session, error) {
	sess, err := GetSession(c)
	if err != nil {
		return nil, c.Redirect(http.StatusSeeOther, "/login")
	}
	return sess, nil
}

// HTMXRedirect sets the HX-Redirect header and returns a 200 OK response.
// This is used for HTMX requests that should trigger a client-side redirect.
func HTMXRedirect(c echo.Context, url string) error {
	c.Response().Header().Set("HX-Redirect", url)
	return c.NoContent(http.StatusOK)
}

// Redirect sends HTMX requests a client-side redirect and everything else
// a 303 See Other.
func Redirect(c echo.Context, url string) error {
	if c.Request().Header.Get("HX-Request") == "true" {
		return HTMXRedirect(c, url)
	}
	return c.Redirect(http.StatusSeeOther, url)
}

// CSRFToken returns the token the CSRF middleware issued for this request
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(middleware.CSRFContextKey).(string)
	return token
}
