package handler

import (
	"careguard/internal/authority"
	"careguard/internal/ocr"
	"careguard/internal/verification"
	dErrors "careguard/pkg/domain-errors"
	"careguard/pkg/validate"
)

// wwccRequest is the wire form of a WWCC submission.
type wwccRequest struct {
	WWCCNumber  string `json:"wwccNumber" validate:"required,min=10"`
	State       string `json:"state" validate:"required"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`

	jurisdiction authority.Jurisdiction
}

// Validate checks field constraints and parses the jurisdiction.
func (r *wwccRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	jurisdiction, err := authority.ParseJurisdiction(r.State)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	r.jurisdiction = jurisdiction
	return nil
}

func (r *wwccRequest) domain() verification.WWCCRequest {
	return verification.WWCCRequest{
		WWCCNumber:   r.WWCCNumber,
		Jurisdiction: r.jurisdiction,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		DateOfBirth:  r.DateOfBirth,
	}
}

// policeCheckRequest is the wire form of a police clearance submission.
type policeCheckRequest struct {
	DocumentURL string `json:"documentUrl" validate:"required,url"`
	IssueDate   string `json:"issueDate" validate:"required,datetime=2006-01-02"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
}

func (r *policeCheckRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return nil
}

func (r *policeCheckRequest) domain() verification.PoliceCheckRequest {
	return verification.PoliceCheckRequest{
		DocumentURL: r.DocumentURL,
		IssueDate:   r.IssueDate,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
	}
}

// identityRequest is the wire form of an identity document submission.
type identityRequest struct {
	DocumentType   string `json:"documentType" validate:"required,oneof=passport drivers_license"`
	DocumentNumber string `json:"documentNumber" validate:"required,min=5"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	DocumentURL    string `json:"documentUrl" validate:"required,url"`
}

func (r *identityRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return nil
}

func (r *identityRequest) domain() verification.IdentityRequest {
	return verification.IdentityRequest{
		DocumentType:   ocr.DocumentType(r.DocumentType),
		DocumentNumber: r.DocumentNumber,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DateOfBirth:    r.DateOfBirth,
		DocumentURL:    r.DocumentURL,
	}
}
