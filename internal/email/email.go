package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/spf13/afero"
)

// --- LogSender (for development) ---

// LogSender prints emails to the console instead of sending them.
type LogSender struct {
	senderAddress string
}

// NewLogSender creates a LogSender that reports the given from address.
func NewLogSender(senderAddress string) *LogSender {
	return &LogSender{senderAddress: senderAddress}
}

// Send logs the email content and returns a generated id.
func (s *LogSender) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	id := uuid.NewString()
	from := msg.From
	if from == "" {
		from = s.senderAddress
	}
	slog.InfoContext(ctx, "Email sent (logged)",
		"id", id,
		"from", from,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"body", msg.HTMLBody,
	)
	return id, nil
}

// --- ResendSender (for production) ---

// ResendEndpoint is the Resend API URL for sending email.
const ResendEndpoint = "https://api.resend.com/emails"

// ResendSender sends emails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
}

// NewResendSender creates a ResendSender. An empty endpoint uses ResendEndpoint.
func NewResendSender(apiKey, senderAddress, endpoint string, timeout time.Duration) *ResendSender {
	if endpoint == "" {
		endpoint = ResendEndpoint
	}
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: senderAddress,
		endpoint:      endpoint,
		client:        &http.Client{Timeout: timeout},
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send dispatches an email using the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	sender := msg.From
	if sender == "" {
		sender = s.senderAddress
	}
	if sender == "" {
		sender = "Clashhub <onboarding@resend.dev>" // Default sender for testing with Resend
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTMLBody,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	var out resendResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("resend API returned an error: status %d: %s", resp.StatusCode, out.Message)
	}

	slog.InfoContext(ctx, "Successfully sent email via Resend", "to", msg.To, "subject", msg.Subject, "id", out.ID)
	return out.ID, nil
}

// --- OutboxSender (for local testing of real email bodies) ---

// OutboxSender writes each email as an HTML file into a directory.
type OutboxSender struct {
	fs            afero.Fs
	dir           string
	senderAddress string
}

// NewOutboxSender creates an OutboxSender writing into dir on fs.
func NewOutboxSender(fs afero.Fs, dir, senderAddress string) *OutboxSender {
	return &OutboxSender{fs: fs, dir: dir, senderAddress: senderAddress}
}

// Send writes the email to <dir>/<id>.html with the headers as an HTML comment.
func (s *OutboxSender) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create outbox directory: %w", err)
	}

	from := msg.From
	if from == "" {
		from = s.senderAddress
	}

	id := uuid.NewString()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!--\nFrom: %s\nTo: %s\nReply-To: %s\nSubject: %s\nDate: %s\n-->\n",
		from, msg.To, msg.ReplyTo, msg.Subject, time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString(msg.HTMLBody)

	name := path.Join(s.dir, id+".html")
	if err := afero.WriteFile(s.fs, name, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write outbox message: %w", err)
	}

	slog.InfoContext(ctx, "Email written to outbox", "id", id, "path", name, "to", msg.To)
	return id, nil
}
