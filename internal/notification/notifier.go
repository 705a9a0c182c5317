// Package notification delivers verification outcome emails. Delivery is
// best effort: a check result stands whether or not the user could be told
// about it.
package notification

import (
	"context"
	"log/slog"

	id "careguard/pkg/domain"
)

// Email is one outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier sends an email.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// Contact is the delivery target for one user.
type Contact struct {
	FirstName string
	Email     string
}

// Directory resolves a user ID to their contact details.
type Directory interface {
	Contact(ctx context.Context, userID id.UserID) (Contact, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, userID id.UserID) (Contact, error)

func (f DirectoryFunc) Contact(ctx context.Context, userID id.UserID) (Contact, error) {
	return f(ctx, userID)
}

// LogNotifier writes messages to the log instead of sending them. Used in
// local development and tests where no SMTP server is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, email Email) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification (not sent, no mailer configured)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
