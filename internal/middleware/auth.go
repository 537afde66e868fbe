package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/view"
)

// UserContextKey is the echo context key holding the *domain.Session of
// the signed-in user.
const UserContextKey = "user"

// RequireSession protects routes that need a signed-in user. Visitors
// without a valid session are sent to the login page.
func RequireSession(now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := view.CurrentSession(c)
			if sess == nil {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if sess.Expired(now()) {
				// Drop the stale session so the next page renders signed out.
				if err := view.StoreSession(c, nil); err != nil {
					FromContext(c.Request().Context()).Error("failed to clear expired session", "error", err)
				}
				view.SetFlashError(c, "Your session has expired. Please log in again.")
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			c.Set(UserContextKey, sess)
			return next(c)
		}
	}
}

// CurrentUser returns the session stored by RequireSession.
func CurrentUser(c echo.Context) *domain.Session {
	sess, _ := c.Get(UserContextKey).(*domain.Session)
	return sess
}
