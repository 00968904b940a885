package middleware

import (
	"errors"
	"net/http"

	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/labstack/echo/v4"
)

// publicPaths are reachable without an authenticated session
var publicPaths = map[string]bool{
	"/login":  true,
	"/logout": true,
	"/health": true,
}

// AuthMiddleware loads the session on every request and redirects to the
// login page unless it is authenticated. The wrapped handler never runs for
// an unauthenticated request.
func AuthMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if publicPaths[c.Request().URL.Path] {
				return next(c)
			}

			sess, err := store.Get(c)
			if errors.Is(err, session.ErrInvalidSession) {
				// Clear it to prevent a redirect loop on a stale cookie
				_ = store.Destroy(c)
			} else if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Session store unavailable").SetInternal(err)
			}

			if !sess.Authenticated {
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			c.Set(utils.ContextKeySession, sess)

			return next(c)
		}
	}
}
