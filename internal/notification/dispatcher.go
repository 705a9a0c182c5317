package notification

import (
	"context"
	"log/slog"

	"careguard/internal/events"
	"careguard/internal/verification/metrics"
)

// Dispatcher consumes recorded-check events and emails the affected user.
// Every failure is logged and dropped: notification is strictly downstream
// of the ledger and must never affect a check's outcome.
type Dispatcher struct {
	notifier  Notifier
	directory Directory
	inbox     <-chan events.CheckRecorded
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher wires a dispatcher to an event inbox.
func NewDispatcher(notifier Notifier, directory Directory, inbox <-chan events.CheckRecorded, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier:  notifier,
		directory: directory,
		inbox:     inbox,
		logger:    logger,
		metrics:   m,
	}
}

// Run processes events until ctx is cancelled or the inbox closes.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-d.inbox:
			if !ok {
				return nil
			}
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event events.CheckRecorded) {
	contact, err := d.directory.Contact(ctx, event.UserID)
	if err != nil {
		d.logger.WarnContext(ctx, "notification contact lookup failed",
			"user_id", event.UserID,
			"error", err,
		)
		d.metrics.IncrementNotification("contact_error")
		return
	}
	if contact.Email == "" {
		// Users without an email address simply get no notification.
		d.metrics.IncrementNotification("no_email")
		return
	}

	email := Compose(contact, CheckResult{
		CheckType: event.CheckType,
		Status:    event.Status,
		Message:   event.Message,
	})
	if err := d.notifier.Send(ctx, email); err != nil {
		d.logger.WarnContext(ctx, "notification send failed",
			"user_id", event.UserID,
			"check_type", event.CheckType,
			"error", err,
		)
		d.metrics.IncrementNotification("error")
		return
	}
	d.metrics.IncrementNotification("sent")
}
