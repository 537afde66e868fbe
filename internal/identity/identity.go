// Package identity contains the IdentityProvider backends that talk to a
// hosted authentication service, plus an in-process backend for development.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"strings"

	"github.com/nfrund/clashhub/internal/domain"
	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// NormalizeEmail trims and case-folds an address so lookups are stable.
func NormalizeEmail(email string) string {
	return folder.String(strings.TrimSpace(email))
}

// ResetLink builds the password reset URL sent to users.
func ResetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password?token=" + token
}

// SendResetEmail mails a reset link through sender.
func SendResetEmail(ctx context.Context, sender domain.EmailSender, to, link string) error {
	body := fmt.Sprintf(`<p>Click the link below to reset your password:</p><a href="%s">Reset Password</a>`, html.EscapeString(link))
	_, err := sender.Send(ctx, domain.EmailMessage{
		To:       to,
		Subject:  "Reset Your Password",
		HTMLBody: body,
	})
	return err
}

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
