package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/handlers"
	"github.com/nfrund/clashhub/internal/pubsub"
	authsession "github.com/nfrund/clashhub/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSocket(t *testing.T) {
	e, sessions := newTestEcho(t)
	e.GET("/ws/session", handlers.NewSessionSocket(sessions, "http://localhost:8080").Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	c := newClient(t, e)
	browserID := c.browserID()

	header := http.Header{}
	ck := c.cookies["auth-session"]
	require.NotNil(t, ck)
	header.Add("Cookie", (&http.Cookie{Name: ck.Name, Value: ck.Value}).String())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	read := func() handlers.SessionState {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var state handlers.SessionState
		require.NoError(t, conn.ReadJSON(&state))
		return state
	}

	assert.Equal(t, handlers.SessionState{}, read())

	require.NoError(t, sessions.Set(t.Context(), browserID, &domain.Session{Email: "chief@example.com"}))
	assert.Equal(t, handlers.SessionState{SignedIn: true, Email: "chief@example.com"}, read())

	require.NoError(t, sessions.Clear(t.Context(), browserID))
	assert.Equal(t, handlers.SessionState{}, read())
}

func TestSessionSocket_RequiresBrowserID(t *testing.T) {
	// No session middleware, so the request carries no browser id.
	e := echo.New()
	bridge := pubsub.NewWatermillBridge(nil)
	t.Cleanup(func() { _ = bridge.Close() })
	e.GET("/ws/session", handlers.NewSessionSocket(authsession.NewManager(bridge, bridge), "http://localhost:8080").Serve)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/session", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
