package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"cafe-directory/models"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const smtpTimeout = 15 * time.Second

// SMTPSender mails each submission to the configured mailbox, authenticating
// as that mailbox with an app password.
type SMTPSender struct {
	addr     string
	from     string
	password string
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPSender(addr, from, password string) *SMTPSender {
	d := &net.Dialer{Timeout: smtpTimeout}
	return &SMTPSender{addr: addr, from: from, password: password, dial: d.DialContext}
}

func (s *SMTPSender) Send(ctx context.Context, msg models.ContactMessage) error {
	host, _, err := net.SplitHostPort(s.addr)
	if err != nil {
		return fmt.Errorf("smtp address %q: %w", s.addr, err)
	}

	conn, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	deadline := time.Now().Add(smtpTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.from, s.password, host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(s.from); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(compose(s.from, s.from, msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	logger.Debug("Contact message mailed", zap.String("to", s.from))
	return c.Quit()
}
