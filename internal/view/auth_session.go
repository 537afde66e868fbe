package view

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
)

const (
	authSessionName = "auth-session"
	keyBrowserID    = "browser_id"
	keySession      = "session"
)

// authSession loads the auth cookie. A cookie that no longer decodes, for
// example after SESSION_SECRET changed, is replaced by a fresh session so the
// next save overwrites it.
func authSession(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(authSessionName, c)
	if sess == nil {
		return nil, err
	}
	if err != nil {
		// The store hands back an empty session along with the decode error,
		// and caches it for the rest of the request.
		c.Logger().Warnf("discarding unreadable auth session: %v", err)
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return sess, nil
}

// BrowserID returns the stable id identifying this browser, issuing one on
// first use. It is empty only when no session store is installed.
func BrowserID(c echo.Context) string {
	sess, err := authSession(c)
	if err != nil {
		return ""
	}
	if id, ok := sess.Values[keyBrowserID].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Values[keyBrowserID] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Errorf("failed to save auth session: %v", err)
	}
	return id
}

// CurrentSession returns the signed-in session stored in the cookie, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	sess, err := authSession(c)
	if err != nil {
		return nil
	}
	raw, ok := sess.Values[keySession].(string)
	if !ok || raw == "" {
		return nil
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	return &s
}

// StoreSession saves s in the auth cookie. A nil session signs the browser out.
func StoreSession(c echo.Context, s *domain.Session) error {
	sess, err := authSession(c)
	if err != nil {
		return err
	}
	if _, ok := sess.Values[keyBrowserID].(string); !ok {
		sess.Values[keyBrowserID] = uuid.NewString()
	}
	if s == nil {
		delete(sess.Values, keySession)
	} else {
		raw, err := json.Marshal(s)
		if err != nil {
			return err
		}
		sess.Values[keySession] = string(raw)
	}
	return sess.Save(c.Request(), c.Response())
}
