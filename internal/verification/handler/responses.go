package handler

import (
	"time"

	"careguard/internal/verification"
)

// outcomeResponse is the wire form of a check outcome.
type outcomeResponse struct {
	Success              bool                     `json:"success"`
	Status               verification.Status      `json:"status"`
	Message              string                   `json:"message"`
	Data                 verification.OutcomeData `json:"data,omitempty"`
	RequiresManualReview bool                     `json:"requiresManualReview"`
}

func toOutcomeResponse(outcome verification.Outcome) outcomeResponse {
	return outcomeResponse{
		Success:              outcome.Success,
		Status:               outcome.Status,
		Message:              outcome.Message,
		Data:                 outcome.Data,
		RequiresManualReview: outcome.RequiresManualReview,
	}
}

// statusResponse is the wire form of the per-user verification summary.
type statusResponse struct {
	WWCC            verification.Status `json:"wwcc"`
	PoliceCheck     verification.Status `json:"policeCheck"`
	Identity        verification.Status `json:"identity"`
	WWCCLastChecked *time.Time          `json:"wwccLastChecked,omitempty"`
	FullyVerified   bool                `json:"fullyVerified"`
	Checks          []checkResponse     `json:"checks"`
}

// checkResponse is one ledger row on the wire.
type checkResponse struct {
	ID                   string                 `json:"id"`
	CheckType            verification.CheckType `json:"checkType"`
	Status               verification.Status    `json:"status"`
	DocumentURL          string                 `json:"documentUrl,omitempty"`
	VerificationData     any                    `json:"verificationData,omitempty"`
	VerifiedAt           *time.Time             `json:"verifiedAt,omitempty"`
	ExpiresAt            *time.Time             `json:"expiresAt,omitempty"`
	AutoVerified         bool                   `json:"autoVerified"`
	ManualReviewRequired bool                   `json:"manualReviewRequired"`
	CreatedAt            time.Time              `json:"createdAt"`
}

func toStatusResponse(summary verification.StatusSummary) statusResponse {
	checks := make([]checkResponse, 0, len(summary.Checks))
	for _, check := range summary.Checks {
		row := checkResponse{
			ID:                   check.ID.String(),
			CheckType:            check.CheckType,
			Status:               check.Status,
			DocumentURL:          check.DocumentURL,
			VerifiedAt:           check.VerifiedAt,
			ExpiresAt:            check.ExpiresAt,
			AutoVerified:         check.AutoVerified,
			ManualReviewRequired: check.ManualReviewRequired,
			CreatedAt:            check.CreatedAt,
		}
		if len(check.VerificationData) > 0 {
			// Already JSON; pass through without re-shaping.
			row.VerificationData = check.VerificationData
		}
		checks = append(checks, row)
	}
	return statusResponse{
		WWCC:            summary.WWCC,
		PoliceCheck:     summary.PoliceCheck,
		Identity:        summary.Identity,
		WWCCLastChecked: summary.WWCCLastChecked,
		FullyVerified:   summary.FullyVerified,
		Checks:          checks,
	}
}

// eligibleResponse answers the booking-eligibility gate.
type eligibleResponse struct {
	FullyVerified bool `json:"fullyVerified"`
}
