package email

import (
	"fmt"

	"github.com/nfrund/clashhub/internal/config"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/spf13/afero"
)

// NewEmailService creates and returns an email sender based on the configuration.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case "log":
		return NewLogSender(cfg.GetEmailSender()), nil
	case "outbox":
		return NewOutboxSender(afero.NewOsFs(), cfg.GetEmailOutboxDir(), cfg.GetEmailSender()), nil
	case "resend":
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return NewResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender(), "", cfg.GetHTTPTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
