// Package verification implements the safety-verification engine: WWCC,
// police-clearance, and identity-document checks, the append-only check
// ledger, and the per-user aggregate status used to gate bookings.
package verification

import (
	"encoding/json"
	"time"

	"careguard/internal/authority"
	"careguard/internal/ocr"
	id "careguard/pkg/domain"
)

// dateLayout is the calendar-date wire format for all date fields.
const dateLayout = "2006-01-02"

// CheckType distinguishes the three verification tracks.
type CheckType string

const (
	CheckTypeWWCC        CheckType = "wwcc"
	CheckTypePoliceCheck CheckType = "police_check"
	CheckTypeIdentity    CheckType = "identity"
)

// Status is the resolution of a single check attempt. Every submission ends
// in exactly one of these; there is no unresolved internal-error state.
// StatusUnset appears only on user aggregate fields before any submission.
type Status string

const (
	StatusUnset    Status = "unset"
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Outcome is the engine's answer to one submission.
//
// Invariants: Status == verified implies Success; RequiresManualReview
// implies Status != verified. Use the constructors below rather than
// building outcomes by hand.
type Outcome struct {
	Success              bool
	Status               Status
	Message              string
	Data                 OutcomeData
	RequiresManualReview bool
}

// OutcomeData is a tagged union over check type so downstream consumers get
// typed field access instead of digging through loosely-typed blobs.
type OutcomeData interface {
	outcomeData()
}

// WWCCData is the outcome payload for WWCC checks.
type WWCCData struct {
	ExpiryDate            string   `json:"expiryDate,omitempty"`
	Restrictions          []string `json:"restrictions,omitempty"`
	VerifiedName          string   `json:"verifiedName,omitempty"`
	AuthorityStatus       string   `json:"authorityStatus,omitempty"`
	ManualVerificationURL string   `json:"manualVerificationUrl,omitempty"`
}

// PoliceCheckData is the outcome payload for police clearance checks.
type PoliceCheckData struct {
	IssueDate  string         `json:"issueDate"`
	Extraction ocr.Extraction `json:"extractedData"`
}

// IdentityData is the outcome payload for identity document checks. Checks
// records the per-field breakdown so a reviewer can see which field failed.
type IdentityData struct {
	DocumentType string           `json:"documentType"`
	Extraction   ocr.Extraction   `json:"extractedData"`
	Checks       ValidationChecks `json:"validationChecks"`
}

// ValidationChecks is the four-way breakdown of identity verification.
type ValidationChecks struct {
	NameMatch           bool `json:"nameMatch"`
	DocumentNumberMatch bool `json:"documentNumberMatch"`
	DOBMatch            bool `json:"dobMatch"`
	DocumentValid       bool `json:"documentValid"`
}

// AllPass reports whether every sub-check passed.
func (c ValidationChecks) AllPass() bool {
	return c.NameMatch && c.DocumentNumberMatch && c.DOBMatch && c.DocumentValid
}

func (WWCCData) outcomeData()        {}
func (PoliceCheckData) outcomeData() {}
func (IdentityData) outcomeData()    {}

func verifiedOutcome(message string, data OutcomeData) Outcome {
	return Outcome{Success: true, Status: StatusVerified, Message: message, Data: data}
}

func rejectedOutcome(message string, data OutcomeData) Outcome {
	return Outcome{Status: StatusRejected, Message: message, Data: data}
}

func manualReviewOutcome(message string, data OutcomeData) Outcome {
	return Outcome{Status: StatusPending, Message: message, Data: data, RequiresManualReview: true}
}

// WWCCRequest submits a Working With Children Check for verification.
type WWCCRequest struct {
	WWCCNumber   string
	Jurisdiction authority.Jurisdiction
	FirstName    string
	LastName     string
	DateOfBirth  string
}

// PoliceCheckRequest submits a police clearance document.
type PoliceCheckRequest struct {
	DocumentURL string
	IssueDate   string
	FirstName   string
	LastName    string
}

// IdentityRequest submits a passport or driver's license.
type IdentityRequest struct {
	DocumentType   ocr.DocumentType
	DocumentNumber string
	FirstName      string
	LastName       string
	DateOfBirth    string
	DocumentURL    string
}

// Check is one row of the verification ledger: a single submission attempt
// and its resolution. Rows are immutable; resubmission appends a new row.
type Check struct {
	ID                   id.CheckID
	UserID               id.UserID
	CheckType            CheckType
	Status               Status
	DocumentURL          string
	VerificationData     json.RawMessage
	VerifiedAt           *time.Time
	ExpiresAt            *time.Time
	AutoVerified         bool
	ManualReviewRequired bool
	CreatedAt            time.Time
}

// UserVerification is the denormalized current status per check type carried
// on the user record, plus the contact fields the notification dispatcher
// needs. The ledger is the history; this is only the latest known state.
type UserVerification struct {
	UserID            id.UserID
	FirstName         string
	Email             string
	WWCCStatus        Status
	PoliceCheckStatus Status
	IdentityStatus    Status
	WWCCLastChecked   *time.Time
}

// StatusSummary is the aggregate view consumed by booking-eligibility checks.
type StatusSummary struct {
	WWCC            Status
	PoliceCheck     Status
	Identity        Status
	WWCCLastChecked *time.Time
	FullyVerified   bool
	Checks          []Check
}
