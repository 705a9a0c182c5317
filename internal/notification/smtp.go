package notification

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPNotifier delivers email over SMTP.
type SMTPNotifier struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewSMTPNotifier constructs an SMTP-backed notifier. Auth is skipped when no
// username is configured, which is the common case for local relays.
func NewSMTPNotifier(host, port, from, username, password string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		from:     from,
		username: username,
		password: password,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, email Email) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.from, email.To, email.Subject, email.HTML,
	)
	addr := fmt.Sprintf("%s:%s", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := smtp.SendMail(addr, auth, n.from, []string{email.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}
