package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/identity"
	"github.com/surrealdb/surrealdb.go"
)

const (
	accessMethod  = "account"
	tokenLifetime = time.Hour
)

type authRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// resetRow is decoded from UPDATE ... RETURN AFTER, where id is a record id.
type resetRow struct {
	Email string `json:"email"`
}

// IdentityStore implements domain.IdentityProvider on top of SurrealDB
// record access. Account creation and sign-in run on short-lived
// connections from dial; administrative queries use db.
type IdentityStore struct {
	db      *surrealdb.DB
	dial    Dialer
	ns      string
	dbName  string
	emailer domain.EmailSender
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewIdentityStore creates a new IdentityStore. emailer may be nil, in which
// case reset tokens are stored but no mail is sent.
func NewIdentityStore(db *surrealdb.DB, dial Dialer, ns, dbName string, emailer domain.EmailSender, baseURL string, logger *slog.Logger) *IdentityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityStore{
		db:      db,
		dial:    dial,
		ns:      ns,
		dbName:  dbName,
		emailer: emailer,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *IdentityStore) accessParams(email, password string) map[string]any {
	return map[string]any{
		"ns":       s.ns,
		"db":       s.dbName,
		"ac":       accessMethod,
		"email":    email,
		"password": password,
	}
}

// withConn dials a dedicated connection and closes it once fn returns.
func (s *IdentityStore) withConn(ctx context.Context, fn func(conn *surrealdb.DB) (*domain.Session, error)) (*domain.Session, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, domain.NewProviderError(domain.CodeNetworkRequestFailed, "", err)
	}
	defer conn.Close(context.Background())
	return fn(conn)
}

func (s *IdentityStore) session(ctx context.Context, conn *surrealdb.DB, token string) (*domain.Session, error) {
	rec, err := QueryOne[authRecord](ctx, conn, "SELECT <string> id AS id, email FROM $auth", nil)
	if err != nil {
		return nil, domain.NewProviderError(domain.CodeInternalError, "failed to load account", err)
	}
	if rec == nil {
		return nil, domain.NewProviderError(domain.CodeInternalError, "authenticated record missing", nil)
	}
	return &domain.Session{
		UserID:    rec.ID,
		Email:     rec.Email,
		Token:     token,
		ExpiresAt: s.now().Add(tokenLifetime),
		Provider:  "password",
	}, nil
}

// CreateAccount implements domain.IdentityProvider.
func (s *IdentityStore) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	email = identity.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, domain.NewProviderError(domain.CodeInvalidEmail, "", nil)
	}
	return s.withConn(ctx, func(conn *surrealdb.DB) (*domain.Session, error) {
		token, err := conn.SignUp(ctx, s.accessParams(email, password))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.NewProviderError(domain.CodeEmailAlreadyInUse, "", domain.ErrUserAlreadyExists)
			}
			return nil, domain.NewProviderError(domain.CodeInternalError, "signup failed", err)
		}
		return s.session(ctx, conn, token)
	})
}

// SignIn implements domain.IdentityProvider.
func (s *IdentityStore) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = identity.NormalizeEmail(email)
	return s.withConn(ctx, func(conn *surrealdb.DB) (*domain.Session, error) {
		token, err := conn.SignIn(ctx, s.accessParams(email, password))
		if err != nil {
			s.logger.Debug("record access sign-in rejected", "error", err)
			return nil, domain.NewProviderError(domain.CodeInvalidCredential, "", domain.ErrInvalidCredentials)
		}
		return s.session(ctx, conn, token)
	})
}

// SendPasswordReset stores a reset token on the account and mails a link.
// Unknown addresses succeed silently.
func (s *IdentityStore) SendPasswordReset(ctx context.Context, email string) error {
	email = identity.NormalizeEmail(email)
	token, err := identity.GenerateSecureToken(32)
	if err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "token generation failed", err)
	}

	query := `
		UPDATE user SET
			resetToken = $reset_token,
			resetTokenExpires = time::now() + 1h
		WHERE email = $email
		RETURN AFTER`
	params := map[string]any{
		"email":       email,
		"reset_token": token,
	}

	updated, err := Query[resetRow](ctx, s.db, query, params)
	if err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "failed to store reset token", err)
	}
	if len(updated) == 0 {
		s.logger.Debug("password reset requested for unknown address")
		return nil
	}
	if s.emailer == nil {
		return nil
	}
	if err := identity.SendResetEmail(ctx, s.emailer, email, identity.ResetLink(s.baseURL, token)); err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "failed to send reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *IdentityStore) ResetPassword(ctx context.Context, token, newPassword string) error {
	query := `
		UPDATE user SET
			password = crypto::argon2::generate($password),
			resetToken = NONE,
			resetTokenExpires = NONE
		WHERE resetToken = $reset_token AND resetTokenExpires > time::now()
		RETURN AFTER`
	updated, err := Query[resetRow](ctx, s.db, query, map[string]any{
		"password":    newPassword,
		"reset_token": token,
	})
	if err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "failed to reset password", err)
	}
	if len(updated) == 0 {
		return domain.NewProviderError(domain.CodeInvalidCredential, "invalid or expired reset token", nil)
	}
	return nil
}

// SignInWithFederatedProvider is not supported by record access.
func (s *IdentityStore) SignInWithFederatedProvider(ctx context.Context, cred domain.FederatedCredential) (*domain.Session, error) {
	return nil, domain.NewProviderError(domain.CodeOperationNotAllowed, fmt.Sprintf("provider %q is not enabled", cred.ProviderID), nil)
}

// SignOut invalidates the server-side view of the session. Record access
// tokens are stateless, so there is nothing to revoke.
func (s *IdentityStore) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return errors.New("no active session")
	}
	s.logger.Debug("signed out", "user_id", session.UserID)
	return nil
}
