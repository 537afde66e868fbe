package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/internal/session"
	"github.com/nfrund/clashhub/internal/view"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// SessionState is the frame pushed to browsers when their signed-in state
// changes.
type SessionState struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
}

func stateOf(s *domain.Session) SessionState {
	if s == nil {
		return SessionState{}
	}
	return SessionState{SignedIn: true, Email: s.Email}
}

// SessionSocket streams session changes for the calling browser over a
// websocket.
type SessionSocket struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
}

// NewSessionSocket creates a SessionSocket. Cross-origin upgrades are
// refused unless the Origin matches baseURL.
func NewSessionSocket(sessions *session.Manager, baseURL string) *SessionSocket {
	return &SessionSocket{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == baseURL || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// Serve handles GET /ws/session.
func (h *SessionSocket) Serve(c echo.Context) error {
	logger := middleware.FromContext(c.Request().Context())
	browserID := view.BrowserID(c)
	if browserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no browser session")
	}

	// The cookie outlives the in-memory manager across restarts.
	if h.sessions.Current(browserID) == nil {
		if s := view.CurrentSession(c); s != nil {
			if err := h.sessions.Set(c.Request().Context(), browserID, s); err != nil {
				logger.Warn("Failed to seed session state", "error", err)
			}
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan SessionState, 8)
	unsubscribe, err := h.sessions.OnSessionChanged(ctx, browserID, func(s *domain.Session) {
		select {
		case updates <- stateOf(s):
		default:
			logger.Warn("Session socket queue full, dropping update", "browser_id", browserID)
		}
	})
	if err != nil {
		logger.Error("Failed to subscribe to session changes", "error", err)
		return nil
	}
	defer unsubscribe()

	go readPump(conn, cancel)
	writePump(ctx, conn, updates)
	return nil
}

// readPump discards client frames and cancels the connection context when
// the peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, updates <-chan SessionState) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case state := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
