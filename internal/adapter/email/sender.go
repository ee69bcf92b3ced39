// Package email delivers transactional messages to tenant contacts.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Sender sends transactional emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message represents an email to send.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// ResendSender sends emails through the Resend API.
type ResendSender struct {
	emails resend.EmailsSvc
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{emails: resend.NewClient(apiKey).Emails}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	slog.DebugContext(ctx, "email sent", "provider", "resend", "id", resp.Id, "to", msg.To)
	return nil
}

// LogSender logs emails instead of sending them. Used when no provider is
// configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	const maxBody = 4096
	body := msg.Text
	if len(body) > maxBody {
		body = body[:maxBody] + "...(truncated)"
	}
	l.logger.InfoContext(ctx, "email (log-only, no provider configured)",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", body,
	)
	return nil
}
