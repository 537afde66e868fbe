package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/config"
	"github.com/nfrund/clashhub/internal/database"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddr:       "127.0.0.1:0",
		AppBaseURL:       "http://localhost:8080",
		SessionSecret:    "a-very-secret-key-for-testing-!",
		IdentityProvider: "memory",
		PlayerStore:      "memory",
		EmailProvider:    "log",
		EmailSender:      "Clashhub <no-reply@example.com>",
		ContactRecipient: "team@example.com",
		ContactSubject:   "New Contact Form Submission",
		ClashAPIURL:      "http://127.0.0.1:1",
		HTTPTimeout:      time.Second,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(context.Background(), testConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	s.RegisterRoutes()
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestNew_SelectsBackends(t *testing.T) {
	s := newTestServer(t)
	assert.IsType(t, &identity.MemoryProvider{}, s.Identity)
	assert.IsType(t, &database.MemoryPlayerStore{}, s.Players)
	assert.Nil(t, s.DB)

	cfg := testConfig()
	cfg.IdentityProvider = "ldap"
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown identity provider")
}

func TestNew_DevGoogleLoginIsOptIn(t *testing.T) {
	cred := domain.FederatedCredential{ProviderID: domain.GoogleProviderID, IDToken: "google:chief@example.com"}

	s := newTestServer(t)
	_, err := s.Identity.SignInWithFederatedProvider(context.Background(), cred)
	code, _ := domain.ProviderCode(err)
	assert.Equal(t, domain.CodeOperationNotAllowed, code)

	cfg := testConfig()
	cfg.DevGoogleLogin = true
	s, err = New(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	sess, err := s.Identity.SignInWithFederatedProvider(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "chief@example.com", sess.Email)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/login", "/signup", "/forgot-password", "/contact", "/reset-password?token=abc"} {
		rec := httptest.NewRecorder()
		s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<!doctype html>", path)
	}

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/validate-tag/not-a-tag", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupThenAccount(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{}
	form.Set("email", "chief@example.com")
	form.Set("password", "Abcdefghijk1!")
	form.Set("confirm-password", "Abcdefghijk1!")
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.RemoteAddr = "192.0.2.10:1234"
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	// A response may set the same cookie more than once; the last one wins.
	latest := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		latest[c.Name] = c
	}
	req = httptest.NewRequest(http.MethodGet, "/account", nil)
	for _, c := range latest {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chief@example.com")
}

func TestStart_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHTTPErrorHandler_WithStackTrace(t *testing.T) {
	e := echo.New()

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{AddSource: true}))
	originalLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(originalLogger)

	setupErrorHandling(e)

	e.GET("/test-unhandled-error", func(c echo.Context) error {
		return errors.New("a deliberate unhandled error occurred")
	})
	e.GET("/test-http-error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/test-unhandled-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code, "Expected a 500 Internal Server Error response")

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "Internal Server Error (Unhandled)")
	assert.Contains(t, logOutput, "error=\"a deliberate unhandled error occurred\"")
	assert.Contains(t, logOutput, "stack_trace=")
	assert.Contains(t, logOutput, "runtime/debug/stack.go", "Stack trace should originate from the debug package")
	assert.Contains(t, logOutput, "internal/server/server_test.go", "Stack trace should point back to this test file")

	logBuffer.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-http-error", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, logBuffer.String(), "HTTP errors are not logged as unhandled")
}
