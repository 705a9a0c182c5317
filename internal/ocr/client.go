// Package ocr integrates with the document-extraction service that reads
// structured fields out of uploaded images and PDFs.
package ocr

import "context"

// DocumentType identifies what kind of document is being extracted.
type DocumentType string

const (
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeDriversLicense DocumentType = "drivers_license"
	DocumentTypePoliceCheck    DocumentType = "police_check"
)

// Extraction is the normalized extraction payload. Type-specific fields are
// zero-valued when they do not apply (HasRecords is only meaningful for
// police checks; document number and DOB only for identity documents).
type Extraction struct {
	ExtractedName           string `json:"extractedName"`
	ExtractedDocumentNumber string `json:"extractedDocumentNumber,omitempty"`
	ExtractedDOB            string `json:"extractedDOB,omitempty"`
	IsValid                 bool   `json:"isValid"`
	IsExpired               bool   `json:"isExpired"`
	HasRecords              bool   `json:"hasRecords,omitempty"`
}

// Extractor reads structured fields from an uploaded document. Any returned
// error (service down, timeout, unreadable document) routes the submission
// to manual review; extraction failure is a first-class degraded path, not
// an exception.
type Extractor interface {
	Extract(ctx context.Context, documentURL string, documentType DocumentType) (Extraction, error)
}
