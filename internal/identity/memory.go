package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/clashhub/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// GoogleDevPrefix marks development credentials accepted by MemoryProvider
// in place of a real Google ID token: "google:<email>". They are only
// honoured after EnableDevGoogleLogin.
const GoogleDevPrefix = "google:"

type memoryAccount struct {
	userID      string
	email       string
	hash        []byte
	disabled    bool
	failures    int
	lockedUntil time.Time
}

// MemoryProvider keeps accounts in process. It mirrors the behaviour of the
// hosted service closely enough for development and tests.
type MemoryProvider struct {
	mu          sync.Mutex
	accounts    map[string]*memoryAccount
	resetTokens map[string]string

	emailer     domain.EmailSender
	baseURL     string
	maxFailures int
	lockout     time.Duration
	sessionTTL  time.Duration
	devGoogle   bool
	now         func() time.Time
}

// NewMemoryProvider creates an empty provider. emailer may be nil, in which
// case reset links are generated but not sent.
func NewMemoryProvider(emailer domain.EmailSender, baseURL string) *MemoryProvider {
	return &MemoryProvider{
		accounts:    make(map[string]*memoryAccount),
		resetTokens: make(map[string]string),
		emailer:     emailer,
		baseURL:     baseURL,
		maxFailures: 5,
		lockout:     15 * time.Minute,
		sessionTTL:  time.Hour,
		now:         time.Now,
	}
}

// EnableDevGoogleLogin makes the provider accept GoogleDevPrefix
// credentials. Anyone can mint one, so this is for local development only.
func (p *MemoryProvider) EnableDevGoogleLogin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devGoogle = true
}

// hashPassword hashes password with bcrypt, reporting over-long passwords
// as weak instead of as an internal failure.
func hashPassword(password string) ([]byte, error) {
	if len(password) > domain.MaxPasswordBytes {
		return nil, domain.NewProviderError(domain.CodeWeakPassword, "password must be at most 72 bytes", domain.ErrPasswordTooLong)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return hash, nil
}

// Disable marks an account as disabled.
func (p *MemoryProvider) Disable(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[NormalizeEmail(email)]
	if ok {
		acct.disabled = true
	}
	return ok
}

func (p *MemoryProvider) newSession(acct *memoryAccount, provider string) *domain.Session {
	return &domain.Session{
		UserID:    acct.userID,
		Email:     acct.email,
		Token:     uuid.NewString(),
		ExpiresAt: p.now().Add(p.sessionTTL),
		Provider:  provider,
	}
}

// CreateAccount implements domain.IdentityProvider.
func (p *MemoryProvider) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	key := NormalizeEmail(email)
	if !strings.Contains(key, "@") {
		return nil, domain.NewProviderError(domain.CodeInvalidEmail, "", nil)
	}
	if len(password) < 6 {
		return nil, domain.NewProviderError(domain.CodeWeakPassword, "password should be at least 6 characters", nil)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[key]; exists {
		return nil, domain.NewProviderError(domain.CodeEmailAlreadyInUse, "", domain.ErrUserAlreadyExists)
	}
	acct := &memoryAccount{userID: uuid.NewString(), email: key, hash: hash}
	p.accounts[key] = acct
	return p.newSession(acct, "password"), nil
}

// SignIn implements domain.IdentityProvider.
func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	key := NormalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[key]
	if !ok || acct.hash == nil {
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "", domain.ErrInvalidCredentials)
	}
	if acct.disabled {
		return nil, domain.NewProviderError(domain.CodeUserDisabled, "", nil)
	}
	if p.now().Before(acct.lockedUntil) {
		return nil, domain.NewProviderError(domain.CodeTooManyRequests, "", nil)
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		acct.failures++
		if acct.failures >= p.maxFailures {
			acct.failures = 0
			acct.lockedUntil = p.now().Add(p.lockout)
		}
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "", domain.ErrInvalidCredentials)
	}

	acct.failures = 0
	return p.newSession(acct, "password"), nil
}

// SendPasswordReset implements domain.IdentityProvider. Unknown addresses
// succeed silently so the form does not reveal which accounts exist.
func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	key := NormalizeEmail(email)

	p.mu.Lock()
	_, ok := p.accounts[key]
	var token string
	if ok {
		var err error
		if token, err = GenerateSecureToken(32); err != nil {
			p.mu.Unlock()
			return domain.NewProviderError(domain.CodeInternalError, "token generation failed", err)
		}
		p.resetTokens[token] = key
	}
	p.mu.Unlock()

	if !ok || p.emailer == nil {
		return nil
	}
	if err := SendResetEmail(ctx, p.emailer, key, ResetLink(p.baseURL, token)); err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "failed to send reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (p *MemoryProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key, ok := p.resetTokens[token]
	if !ok {
		return domain.NewProviderError(domain.CodeInvalidCredential, "invalid or expired reset token", nil)
	}
	delete(p.resetTokens, token)
	if acct, ok := p.accounts[key]; ok {
		acct.hash = hash
		acct.failures = 0
		acct.lockedUntil = time.Time{}
	}
	return nil
}

// SignInWithFederatedProvider accepts "google:<email>" credentials when dev
// Google login is enabled and creates the account on first use. It never
// signs in to an account that has a password.
func (p *MemoryProvider) SignInWithFederatedProvider(ctx context.Context, cred domain.FederatedCredential) (*domain.Session, error) {
	if cred.ProviderID != domain.GoogleProviderID {
		return nil, domain.NewProviderError(domain.CodeOperationNotAllowed, "unsupported provider "+cred.ProviderID, nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.devGoogle {
		return nil, domain.NewProviderError(domain.CodeOperationNotAllowed, "google sign-in is not enabled", nil)
	}

	email, ok := strings.CutPrefix(cred.IDToken, GoogleDevPrefix)
	key := NormalizeEmail(email)
	if !ok || !strings.Contains(key, "@") {
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "unrecognised id token", nil)
	}

	acct, exists := p.accounts[key]
	if !exists {
		acct = &memoryAccount{userID: uuid.NewString(), email: key}
		p.accounts[key] = acct
	}
	if acct.hash != nil {
		return nil, domain.NewProviderError(domain.CodeEmailAlreadyInUse, "account uses password sign-in", domain.ErrUserAlreadyExists)
	}
	if acct.disabled {
		return nil, domain.NewProviderError(domain.CodeUserDisabled, "", nil)
	}
	return p.newSession(acct, cred.ProviderID), nil
}

// SignOut implements domain.IdentityProvider.
func (p *MemoryProvider) SignOut(ctx context.Context, session *domain.Session) error {
	return nil
}
