package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/handlers"
	"github.com/nfrund/clashhub/internal/pubsub"
	"github.com/nfrund/clashhub/internal/rendering"
	authsession "github.com/nfrund/clashhub/internal/session"
	"github.com/nfrund/clashhub/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

var cookieStore = sessions.NewCookieStore([]byte(testSessionSecret))

func newTestEcho(t *testing.T) (*echo.Echo, *authsession.Manager) {
	t.Helper()
	e := echo.New()
	e.Renderer = rendering.NewUniversalRenderer()
	e.Validator = handlers.NewValidator()
	e.Use(session.Middleware(cookieStore))

	bus := pubsub.NewWatermillBridge(nil)
	t.Cleanup(func() { _ = bus.Close() })

	// Exposes the browser id so tests can look at the session manager.
	e.GET("/test/browser-id", func(c echo.Context) error {
		return c.String(http.StatusOK, view.BrowserID(c))
	})
	return e, authsession.NewManager(bus, bus)
}

// client is a tiny cookie-carrying browser.
type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, e *echo.Echo) *client {
	return &client{t: t, e: e, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(formRequest(path, form))
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return c.do(req)
}

func (c *client) browserID() string {
	return c.get("/test/browser-id").Body.String()
}

// session decodes a gorilla session from the cookies the client holds.
func (c *client) session(name string) *sessions.Session {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	sess, err := cookieStore.New(req, name)
	require.NoError(c.t, err)
	return sess
}

// staleAuthCookie returns an auth cookie signed under a secret the server
// no longer uses.
func staleAuthCookie(t *testing.T) *http.Cookie {
	t.Helper()
	old := sessions.NewCookieStore([]byte("a-secret-from-before-rotation"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := old.New(req, "auth-session")
	require.NoError(t, err)
	sess.Values["browser_id"] = "old-browser"
	require.NoError(t, sess.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// assertFlashMessage checks for a specific flash message in the session.
func assertFlashMessage(t *testing.T, c *client, key, expectedMessage string) {
	t.Helper()
	flashes := c.session("flash-session").Flashes(key)
	if assert.NotEmpty(t, flashes, "expected flash message but found none for key: %s", key) {
		assert.Equal(t, expectedMessage, flashes[0])
	}
}

func assertNoFlash(t *testing.T, c *client, key string) {
	t.Helper()
	assert.Empty(t, c.session("flash-session").Flashes(key))
}

// MockProvider is a domain.IdentityProvider that records calls.
type MockProvider struct {
	mu      sync.Mutex
	calls   map[string]int
	err     error
	session *domain.Session

	// When set, SignIn signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func newMockProvider() *MockProvider {
	return &MockProvider{
		calls:   make(map[string]int),
		session: &domain.Session{UserID: "uid-1", Email: "chief@example.com", Token: "tok", Provider: "password"},
	}
}

func (m *MockProvider) record(op string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockProvider) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockProvider) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	return m.record("create")
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	return m.record("signin")
}

func (m *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := m.record("reset")
	return err
}

func (m *MockProvider) SignInWithFederatedProvider(ctx context.Context, cred domain.FederatedCredential) (*domain.Session, error) {
	return m.record("federated:" + cred.ProviderID + ":" + cred.IDToken)
}

func (m *MockProvider) SignOut(ctx context.Context, s *domain.Session) error {
	_, err := m.record("signout")
	return err
}
