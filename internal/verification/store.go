package verification

import (
	"context"
	"time"

	id "careguard/pkg/domain"
)

// Stores are interface-driven so the engine can run against in-memory
// implementations in tests and PostgreSQL in production without rewiring.

// Ledger is the append-only history of verification check attempts. Rows
// are never updated; manual review resolves a pending check by appending a
// new row through the same contract.
type Ledger interface {
	Append(ctx context.Context, check Check) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Check, error)
}

// UserStatuses reads and writes the denormalized per-check-type status on
// the user record.
//
// Get must tolerate a user with no prior submissions: absence of data is a
// valid, common state, reported as all-unset rather than an error.
//
// Set carries no ordering guarantee between concurrent submissions for the
// same user and check type; the last write wins. Callers needing strict
// ordering must serialize upstream.
type UserStatuses interface {
	Get(ctx context.Context, userID id.UserID) (UserVerification, error)
	Set(ctx context.Context, userID id.UserID, checkType CheckType, status Status, checkedAt time.Time) error
}
