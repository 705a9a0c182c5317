package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"careguard/internal/verification"
	id "careguard/pkg/domain"
)

// MemoryLedger is an in-memory append-only check ledger for tests and local
// development. For production, use PostgresLedger instead.
type MemoryLedger struct {
	mu     sync.RWMutex
	checks map[id.UserID][]verification.Check
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		checks: make(map[id.UserID][]verification.Check),
	}
}

// Append stores one check row. Existing rows are never touched.
func (l *MemoryLedger) Append(ctx context.Context, check verification.Check) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks[check.UserID] = append(l.checks[check.UserID], check)
	return nil
}

// ListByUser returns the user's check history, newest first. Rows sharing a
// timestamp come back in reverse append order so the latest submission still
// sorts first. Returns a copy so callers cannot mutate the ledger.
func (l *MemoryLedger) ListByUser(ctx context.Context, userID id.UserID) ([]verification.Check, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows := slices.Clone(l.checks[userID])
	slices.Reverse(rows)
	slices.SortStableFunc(rows, func(a, b verification.Check) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rows, nil
}

// MemoryUserStatuses is an in-memory user status store for tests and local
// development.
type MemoryUserStatuses struct {
	mu    sync.RWMutex
	users map[id.UserID]verification.UserVerification
}

// NewMemoryUserStatuses creates an empty in-memory status store.
func NewMemoryUserStatuses() *MemoryUserStatuses {
	return &MemoryUserStatuses{
		users: make(map[id.UserID]verification.UserVerification),
	}
}

// PutUser seeds a user record. Used by tests and local fixtures; production
// user records come from the accounts system.
func (s *MemoryUserStatuses) PutUser(user verification.UserVerification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

// Get returns the user's current statuses. An unknown user is reported as
// all-unset, not an error.
func (s *MemoryUserStatuses) Get(ctx context.Context, userID id.UserID) (verification.UserVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return emptyVerification(userID), nil
	}
	return user, nil
}

// Set updates the status field for one check type, creating the record if the
// user has never been seeded.
func (s *MemoryUserStatuses) Set(ctx context.Context, userID id.UserID, checkType verification.CheckType, status verification.Status, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		user = emptyVerification(userID)
	}
	switch checkType {
	case verification.CheckTypeWWCC:
		user.WWCCStatus = status
		user.WWCCLastChecked = &checkedAt
	case verification.CheckTypePoliceCheck:
		user.PoliceCheckStatus = status
	case verification.CheckTypeIdentity:
		user.IdentityStatus = status
	default:
		return fmt.Errorf("unknown check type: %s", checkType)
	}
	s.users[userID] = user
	return nil
}

func emptyVerification(userID id.UserID) verification.UserVerification {
	return verification.UserVerification{
		UserID:            userID,
		WWCCStatus:        verification.StatusUnset,
		PoliceCheckStatus: verification.StatusUnset,
		IdentityStatus:    verification.StatusUnset,
	}
}
