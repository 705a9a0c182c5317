// Package events carries post-commit domain events out of the verification
// ledger. The persistence path publishes and moves on; subscribers (the
// notification dispatcher, the Kafka mirror) consume independently, so their
// availability can never block or fail a ledger write.
package events

import (
	"context"
	"time"

	id "careguard/pkg/domain"
)

// CheckRecorded is emitted after a verification check row has been durably
// written and the user's aggregate status updated.
type CheckRecorded struct {
	UserID               id.UserID `json:"userId"`
	CheckType            string    `json:"checkType"`
	Status               string    `json:"status"`
	Message              string    `json:"message"`
	Success              bool      `json:"success"`
	RequiresManualReview bool      `json:"requiresManualReview"`
	RecordedAt           time.Time `json:"recordedAt"`
}

// Publisher delivers CheckRecorded events. Implementations must be
// best-effort from the caller's point of view: an error is logged by the
// caller, never propagated into the persistence path.
type Publisher interface {
	Publish(ctx context.Context, event CheckRecorded) error
}
