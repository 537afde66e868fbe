package domain

import (
	"context"
	"time"
)

// Session is the signed-in state handed back by an identity provider.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Token        string    `json:"token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Provider     string    `json:"provider"`
}

// Expired reports whether the session carries an expiry that has passed.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// FederatedCredential is the proof obtained from a federated sign-in popup,
// e.g. the ID token returned by Google Identity Services.
type FederatedCredential struct {
	ProviderID string
	IDToken    string
}

// GoogleProviderID is the provider id used for Google sign-in.
const GoogleProviderID = "google.com"

// IdentityProvider is the hosted authentication collaborator. It lives in
// the domain because it's a requirement OF the domain, not of any one
// backend. Failures are reported as *ProviderError.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignInWithFederatedProvider(ctx context.Context, cred FederatedCredential) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
}
