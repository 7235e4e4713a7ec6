package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/job-application-tracker/internal/session"
)

// SessionAuth returns an Echo middleware that resolves the session cookie
// against the injected store and places the resulting user id into the
// request context under "user_id". Every failure mode — missing cookie,
// unknown token, expired session, store error — produces the same 401
// response body, so a caller cannot distinguish a malformed session from a
// nonexistent one.
func SessionAuth(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			userID, err := store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				// ErrNotFound and store failures alike: one uniform outcome.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}
