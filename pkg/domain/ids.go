// Package domain holds typed identifiers shared across the service.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-type assignment (a CheckID can never be passed where a UserID is
// expected). Parse functions enforce validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "careguard/pkg/domain-errors"
)

// UserID identifies a marketplace user (parent or caregiver).
type UserID uuid.UUID

// CheckID identifies a single verification check attempt in the ledger.
type CheckID uuid.UUID

// ParseUserID validates and returns a UserID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// NewCheckID returns a fresh random CheckID.
func NewCheckID() CheckID {
	return CheckID(uuid.New())
}

// ParseCheckID validates and returns a CheckID.
func ParseCheckID(s string) (CheckID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CheckID{}, err
	}
	return CheckID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is unset.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id CheckID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is unset.
func (id CheckID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
