package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nfrund/clashhub/internal/domain"
)

// FirebaseProvider talks to the Identity Toolkit REST API that backs
// Firebase Authentication.
type FirebaseProvider struct {
	apiKey     string
	endpoint   string
	requestURI string
	client     *http.Client
	now        func() time.Time
}

// NewFirebaseProvider creates a provider. requestURI is the app's base URL,
// which Identity Toolkit requires for federated sign-in.
func NewFirebaseProvider(apiKey, endpoint, requestURI string, timeout time.Duration) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		requestURI: requestURI,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type firebaseAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// restCodes maps Identity Toolkit error messages to provider codes.
var restCodes = map[string]string{
	"EMAIL_EXISTS":                domain.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               domain.CodeWeakPassword,
	"USER_DISABLED":               domain.CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": domain.CodeTooManyRequests,
	"INVALID_LOGIN_CREDENTIALS":   domain.CodeInvalidCredential,
	"INVALID_PASSWORD":            domain.CodeWrongPassword,
	"EMAIL_NOT_FOUND":             domain.CodeUserNotFound,
	"INVALID_EMAIL":               domain.CodeInvalidEmail,
	"INVALID_IDP_RESPONSE":        domain.CodeInvalidCredential,
	"OPERATION_NOT_ALLOWED":       domain.CodeOperationNotAllowed,
}

// translateRESTError converts an Identity Toolkit message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" to a code.
func translateRESTError(message string) string {
	key, _, _ := strings.Cut(message, " ")
	if code, ok := restCodes[strings.TrimSpace(key)]; ok {
		return code
	}
	return domain.CodeInternalError
}

func (p *FirebaseProvider) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	u := fmt.Sprintf("%s/accounts:%s?key=%s", p.endpoint, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.CodeNetworkRequestFailed, "identity toolkit unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr firebaseErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error.Message == "" {
			return domain.NewProviderError(domain.CodeInternalError, fmt.Sprintf("status %d", resp.StatusCode), err)
		}
		return domain.NewProviderError(translateRESTError(apiErr.Error.Message), apiErr.Error.Message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewProviderError(domain.CodeInternalError, "malformed response", err)
	}
	return nil
}

func (p *FirebaseProvider) session(r firebaseAuthResponse, provider string) *domain.Session {
	s := &domain.Session{
		UserID:       r.LocalID,
		Email:        r.Email,
		Token:        r.IDToken,
		RefreshToken: r.RefreshToken,
		Provider:     provider,
	}
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil {
		s.ExpiresAt = p.now().Add(time.Duration(secs) * time.Second)
	}
	return s
}

// CreateAccount implements domain.IdentityProvider.
func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	var out firebaseAuthResponse
	err := p.call(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.session(out, "password"), nil
}

// SignIn implements domain.IdentityProvider.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var out firebaseAuthResponse
	err := p.call(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.session(out, "password"), nil
}

// SendPasswordReset implements domain.IdentityProvider. The hosted service
// delivers the email itself. Unknown addresses succeed silently.
func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	err := p.call(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
	if code, ok := domain.ProviderCode(err); ok && code == domain.CodeUserNotFound {
		slog.DebugContext(ctx, "Password reset requested for unknown address")
		return nil
	}
	return err
}

// SignInWithFederatedProvider exchanges an IdP credential for a session.
func (p *FirebaseProvider) SignInWithFederatedProvider(ctx context.Context, cred domain.FederatedCredential) (*domain.Session, error) {
	if cred.IDToken == "" {
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "missing id token", nil)
	}
	postBody := url.Values{}
	postBody.Set("id_token", cred.IDToken)
	postBody.Set("providerId", cred.ProviderID)

	var out firebaseAuthResponse
	err := p.call(ctx, "signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          p.requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.session(out, cred.ProviderID), nil
}

// SignOut drops the local session. Identity Toolkit tokens are stateless,
// so there is nothing to revoke remotely.
func (p *FirebaseProvider) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return errors.New("no session to sign out")
	}
	slog.DebugContext(ctx, "Signed out firebase session", "user_id", session.UserID)
	return nil
}
