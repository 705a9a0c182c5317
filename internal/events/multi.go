package events

import (
	"context"
	"errors"
)

// MultiPublisher fans one event out to several publishers. Every publisher
// is attempted; errors are joined so the caller can log all failures.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event CheckRecorded) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
