// Package authority integrates with the state WWCC registries.
//
// Each of the eight Australian jurisdictions runs its own registry API; the
// Client interface keeps them interchangeable so the verification engine
// never branches on jurisdiction beyond the registry lookup.
package authority

import (
	"context"
	"fmt"
)

// Jurisdiction is one of the eight Australian states and territories.
type Jurisdiction string

const (
	NSW Jurisdiction = "NSW"
	VIC Jurisdiction = "VIC"
	QLD Jurisdiction = "QLD"
	WA  Jurisdiction = "WA"
	SA  Jurisdiction = "SA"
	TAS Jurisdiction = "TAS"
	ACT Jurisdiction = "ACT"
	NT  Jurisdiction = "NT"
)

// All lists every supported jurisdiction.
var All = []Jurisdiction{NSW, VIC, QLD, WA, SA, TAS, ACT, NT}

// ParseJurisdiction validates and returns a Jurisdiction.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	j := Jurisdiction(s)
	for _, known := range All {
		if j == known {
			return j, nil
		}
	}
	return "", fmt.Errorf("unknown jurisdiction: %q", s)
}

func (j Jurisdiction) String() string { return string(j) }

// Card statuses reported by the registries.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
)

// VerifyRequest carries the identity fields submitted to a registry.
type VerifyRequest struct {
	WWCCNumber  string `json:"wwccNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

// Response is the normalized registry answer.
type Response struct {
	Valid        bool     `json:"valid"`
	Status       string   `json:"status"`
	ExpiryDate   string   `json:"expiryDate,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
	FullName     string   `json:"fullName,omitempty"`
}

// Client queries one jurisdiction's WWCC registry. Any returned error means
// the check could not be resolved (outage, timeout, malformed response); the
// engine converts all of them to the manual-review path.
type Client interface {
	Verify(ctx context.Context, req VerifyRequest) (Response, error)
}
