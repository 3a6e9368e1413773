package notify

import (
	"context"
	"fmt"
	"strings"

	"cafe-directory/config"
	"cafe-directory/models"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// NotificationSender delivers contact form submissions to the site owner.
type NotificationSender interface {
	Send(ctx context.Context, msg models.ContactMessage) error
}

// NewSender returns an SMTP sender when mail credentials are configured and a
// logging sender otherwise.
func NewSender(cfg *config.Config) NotificationSender {
	if !cfg.MailEnabled() {
		logger.Info("Contact mail disabled, messages will only be logged")
		return LogSender{}
	}
	logger.Info("Contact mail enabled", zap.String("smtp", cfg.SMTPAddr), zap.String("to", cfg.MailAddress))
	return NewSMTPSender(cfg.SMTPAddr, cfg.MailAddress, cfg.MailAppPassword)
}

// LogSender records the submission without delivering it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg models.ContactMessage) error {
	logger.Info("Contact message received",
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.Int("length", len(msg.Message)),
	)
	return nil
}

// compose builds the plain-text mail body for a submission.
func compose(from, to string, msg models.ContactMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if replyTo := headerValue(msg.Email); replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	b.WriteString("Subject: New Message\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Name: %s\r\n", headerValue(msg.Name))
	fmt.Fprintf(&b, "Email: %s\r\n", headerValue(msg.Email))
	fmt.Fprintf(&b, "Phone: %s\r\n", headerValue(msg.Phone))
	fmt.Fprintf(&b, "Message:\r\n%s\r\n", strings.ReplaceAll(msg.Message, "\n", "\r\n"))
	return []byte(b.String())
}

// headerValue strips line breaks so user input cannot add headers.
func headerValue(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}
