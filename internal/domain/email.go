package domain

import "context"

// EmailMessage is a single outgoing email.
type EmailMessage struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// EmailSender defines the interface for sending emails. This allows for
// different implementations (e.g., for logging, Resend, a file outbox).
// Send returns the provider's message id when one is available.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}
