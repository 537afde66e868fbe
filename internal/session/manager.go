// Package session tracks the signed-in state of each browser and notifies
// listeners when it changes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/pubsub"
)

const topicPrefix = "auth.session."

// Topic returns the bus topic carrying changes for one browser.
func Topic(browserID string) string {
	return topicPrefix + browserID
}

type changeEvent struct {
	Session *domain.Session `json:"session"`
}

// Manager holds the current session per browser id.
type Manager struct {
	pub pubsub.Publisher
	sub pubsub.Subscriber

	mu      sync.Mutex
	current map[string]*domain.Session
	now     func() time.Time
}

// NewManager creates a Manager publishing on pub and subscribing on sub.
func NewManager(pub pubsub.Publisher, sub pubsub.Subscriber) *Manager {
	return &Manager{
		pub:     pub,
		sub:     sub,
		current: make(map[string]*domain.Session),
		now:     time.Now,
	}
}

// Current returns a copy of the session for browserID, or nil. A session
// past its expiry is dropped and reported as nil.
func (m *Manager) Current(browserID string) *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.current[browserID]
	if !ok {
		return nil
	}
	if s.Expired(m.now()) {
		delete(m.current, browserID)
		return nil
	}
	cp := *s
	return &cp
}

// Sweep drops every expired session and tells its listeners the browser is
// signed out. It returns how many sessions were dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	var expired []string
	m.mu.Lock()
	for id, s := range m.current {
		if s.Expired(now) {
			delete(m.current, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		// Best effort; a listener that misses this sees nil on its next Current.
		_ = m.publish(ctx, id, nil)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Set records s as the session of browserID and notifies listeners.
// A nil s is the same as Clear.
func (m *Manager) Set(ctx context.Context, browserID string, s *domain.Session) error {
	m.mu.Lock()
	if s == nil {
		delete(m.current, browserID)
	} else {
		cp := *s
		m.current[browserID] = &cp
	}
	m.mu.Unlock()

	return m.publish(ctx, browserID, s)
}

// Clear signs browserID out and notifies listeners.
func (m *Manager) Clear(ctx context.Context, browserID string) error {
	return m.Set(ctx, browserID, nil)
}

func (m *Manager) publish(ctx context.Context, browserID string, s *domain.Session) error {
	payload, err := json.Marshal(changeEvent{Session: s})
	if err != nil {
		return fmt.Errorf("failed to encode session change: %w", err)
	}
	err = m.pub.Publish(ctx, pubsub.Message{
		Topic:    Topic(browserID),
		Payload:  payload,
		Metadata: map[string]string{"browser_id": browserID},
	})
	if err != nil {
		return fmt.Errorf("failed to publish session change: %w", err)
	}
	return nil
}

// OnSessionChanged calls fn with the current session of browserID (nil when
// signed out) right away and again on every change, until the returned
// unsubscribe function is called or ctx ends. Calls to fn never overlap and
// none happen after unsubscribe returns.
func (m *Manager) OnSessionChanged(ctx context.Context, browserID string, fn func(*domain.Session)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	var (
		mu      sync.Mutex
		stopped bool
	)
	deliver := func(s *domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		if !stopped {
			fn(s)
		}
	}

	err := m.sub.Subscribe(subCtx, Topic(browserID), func(_ context.Context, msg pubsub.Message) error {
		var ev changeEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode session change: %w", err)
		}
		deliver(ev.Session)
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to session changes: %w", err)
	}

	mu.Lock()
	fn(m.Current(browserID))
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			stopped = true
			mu.Unlock()
			cancel()
		})
	}, nil
}
