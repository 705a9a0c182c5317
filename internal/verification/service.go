package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"careguard/internal/authority"
	"careguard/internal/events"
	"careguard/internal/ocr"
	"careguard/internal/verification/metrics"
	id "careguard/pkg/domain"
	dErrors "careguard/pkg/domain-errors"
	"careguard/pkg/requestcontext"
)

// Service is the verification engine. It holds no per-request state; each
// submission is an independent unit of work, safe to run concurrently across
// users and check types.
//
// Expected failure modes (authority unreachable, unreadable document, field
// mismatch) are never returned as errors: they resolve to rejected or
// pending outcomes so a submission can never be left in an ambiguous state.
// Errors are reserved for persistence failures and malformed input.
type Service struct {
	authorities    *authority.Registry
	authorityCache authority.Cache
	extractor      ocr.Extractor
	ledger         Ledger
	statuses       UserStatuses
	events         events.Publisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// Deps wires the engine. Authorities, Extractor, Ledger, and Statuses are
// required; AuthorityCache, Events, and Metrics may be nil.
type Deps struct {
	Authorities    *authority.Registry
	AuthorityCache authority.Cache
	Extractor      ocr.Extractor
	Ledger         Ledger
	Statuses       UserStatuses
	Events         events.Publisher
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// NewService validates dependencies and constructs the engine.
func NewService(d Deps) (*Service, error) {
	if d.Authorities == nil {
		return nil, errors.New("authority registry is required")
	}
	if d.Extractor == nil {
		return nil, errors.New("document extractor is required")
	}
	if d.Ledger == nil {
		return nil, errors.New("verification ledger is required")
	}
	if d.Statuses == nil {
		return nil, errors.New("user status store is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		authorities:    d.Authorities,
		authorityCache: d.AuthorityCache,
		extractor:      d.Extractor,
		ledger:         d.Ledger,
		statuses:       d.Statuses,
		events:         d.Events,
		logger:         logger,
		metrics:        d.Metrics,
	}, nil
}

// VerifyWWCC checks a Working With Children Check number against the
// jurisdiction's registry, records the attempt, and returns the outcome.
func (s *Service) VerifyWWCC(ctx context.Context, userID id.UserID, req WWCCRequest) (Outcome, error) {
	outcome := s.checkWWCC(ctx, req)
	if err := s.RecordCheck(ctx, userID, CheckTypeWWCC, outcome, ""); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func (s *Service) checkWWCC(ctx context.Context, req WWCCRequest) Outcome {
	client, ok := s.authorities.Lookup(req.Jurisdiction)
	if !ok {
		// Unsupported jurisdictions always fall back to manual review,
		// never silent rejection.
		return manualReviewOutcome(
			fmt.Sprintf("WWCC verification not available for %s. Manual review required.", req.Jurisdiction),
			WWCCData{ManualVerificationURL: authority.ManualVerificationURL(req.Jurisdiction)},
		)
	}

	resp, cached := s.cachedAuthorityResponse(ctx, req.Jurisdiction, req.WWCCNumber)
	if !cached {
		start := time.Now()
		var err error
		resp, err = client.Verify(ctx, authority.VerifyRequest{
			WWCCNumber:  req.WWCCNumber,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: req.DateOfBirth,
		})
		s.metrics.ObserveAuthorityLatency(req.Jurisdiction.String(), time.Since(start))
		if err != nil {
			s.logger.WarnContext(ctx, "wwcc authority call failed",
				"jurisdiction", req.Jurisdiction,
				"error", err,
			)
			return manualReviewOutcome("WWCC verification system unavailable. Manual review required.", nil)
		}
		s.storeAuthorityResponse(ctx, req.Jurisdiction, req.WWCCNumber, resp)
	}

	if resp.Valid && resp.Status == authority.StatusActive {
		return verifiedOutcome("WWCC verified successfully", WWCCData{
			ExpiryDate:      resp.ExpiryDate,
			Restrictions:    resp.Restrictions,
			VerifiedName:    resp.FullName,
			AuthorityStatus: resp.Status,
		})
	}
	return rejectedOutcome(
		fmt.Sprintf("WWCC verification failed: %s", resp.Status),
		WWCCData{AuthorityStatus: resp.Status},
	)
}

func (s *Service) cachedAuthorityResponse(ctx context.Context, j authority.Jurisdiction, wwccNumber string) (authority.Response, bool) {
	if s.authorityCache == nil {
		return authority.Response{}, false
	}
	resp, err := s.authorityCache.Get(ctx, j, wwccNumber)
	if err != nil {
		return authority.Response{}, false
	}
	return resp, true
}

func (s *Service) storeAuthorityResponse(ctx context.Context, j authority.Jurisdiction, wwccNumber string, resp authority.Response) {
	if s.authorityCache == nil {
		return
	}
	if err := s.authorityCache.Set(ctx, j, wwccNumber, resp); err != nil {
		s.logger.WarnContext(ctx, "registry cache write failed", "jurisdiction", j, "error", err)
	}
}

// VerifyPoliceCheck validates a police clearance document, records the
// attempt, and returns the outcome. Documents older than 12 months are
// rejected before any extraction call is made.
func (s *Service) VerifyPoliceCheck(ctx context.Context, userID id.UserID, req PoliceCheckRequest) (Outcome, error) {
	outcome, err := s.checkPoliceClearance(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.RecordCheck(ctx, userID, CheckTypePoliceCheck, outcome, req.DocumentURL); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func (s *Service) checkPoliceClearance(ctx context.Context, req PoliceCheckRequest) (Outcome, error) {
	issued, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		return Outcome{}, dErrors.New(dErrors.CodeValidation, "issueDate must be a calendar date in YYYY-MM-DD format")
	}

	// Staleness compares calendar dates. The parsed issue date is midnight
	// UTC, so the request clock's time-of-day must be dropped or a document
	// issued exactly 12 months ago would be rejected after 00:00.
	now := requestcontext.Now(ctx).UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if issued.Before(today.AddDate(-1, 0, 0)) {
		return rejectedOutcome("Police clearance document is too old. Must be within 12 months.", nil), nil
	}

	extraction, err := s.extract(ctx, req.DocumentURL, ocr.DocumentTypePoliceCheck)
	if err != nil {
		return manualReviewOutcome("Document could not be processed. Manual review required.", nil), nil
	}

	if !MatchNames(req.FirstName+" "+req.LastName, extraction.ExtractedName) {
		return rejectedOutcome("Name on document does not match submitted information.", nil), nil
	}

	// A flagged record is never auto-rejected or auto-approved; it always
	// routes to a human.
	if extraction.HasRecords {
		return manualReviewOutcome("Police clearance shows records. Manual review required.", nil), nil
	}

	return verifiedOutcome("Police clearance verified successfully", PoliceCheckData{
		IssueDate:  req.IssueDate,
		Extraction: extraction,
	}), nil
}

// VerifyIdentityDocument validates a passport or driver's license, records
// the attempt, and returns the outcome with the per-field breakdown.
func (s *Service) VerifyIdentityDocument(ctx context.Context, userID id.UserID, req IdentityRequest) (Outcome, error) {
	outcome := s.checkIdentityDocument(ctx, req)
	if err := s.RecordCheck(ctx, userID, CheckTypeIdentity, outcome, req.DocumentURL); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func (s *Service) checkIdentityDocument(ctx context.Context, req IdentityRequest) Outcome {
	extraction, err := s.extract(ctx, req.DocumentURL, req.DocumentType)
	if err != nil {
		return manualReviewOutcome("Document could not be processed. Manual review required.", nil)
	}

	checks := ValidationChecks{
		NameMatch:           MatchNames(req.FirstName+" "+req.LastName, extraction.ExtractedName),
		DocumentNumberMatch: req.DocumentNumber == extraction.ExtractedDocumentNumber,
		DOBMatch:            req.DateOfBirth == extraction.ExtractedDOB,
		DocumentValid:       extraction.IsValid && !extraction.IsExpired,
	}
	data := IdentityData{
		DocumentType: string(req.DocumentType),
		Extraction:   extraction,
		Checks:       checks,
	}

	if checks.AllPass() {
		return verifiedOutcome("Identity document verified successfully", data)
	}
	return rejectedOutcome("Identity document validation failed", data)
}

func (s *Service) extract(ctx context.Context, documentURL string, documentType ocr.DocumentType) (ocr.Extraction, error) {
	start := time.Now()
	extraction, err := s.extractor.Extract(ctx, documentURL, documentType)
	s.metrics.ObserveExtractionLatency(time.Since(start))
	if err != nil {
		s.logger.WarnContext(ctx, "document extraction failed",
			"document_type", documentType,
			"error", err,
		)
	}
	return extraction, err
}

// RecordCheck appends an immutable row to the ledger, updates the user's
// aggregate status for the check type, and publishes a CheckRecorded event.
// Exported because manual review resolves pending checks through this same
// contract: the reviewer's decision is recorded as a new row, never an
// update to a prior one.
//
// A failed event publish is logged and swallowed; a failed write is returned,
// since an outcome that cannot be durably recorded must not be treated as
// having happened.
func (s *Service) RecordCheck(ctx context.Context, userID id.UserID, checkType CheckType, outcome Outcome, documentURL string) error {
	now := requestcontext.Now(ctx)

	check := Check{
		ID:                   id.NewCheckID(),
		UserID:               userID,
		CheckType:            checkType,
		Status:               outcome.Status,
		DocumentURL:          documentURL,
		AutoVerified:         outcome.Success && !outcome.RequiresManualReview,
		ManualReviewRequired: outcome.RequiresManualReview,
		CreatedAt:            now,
	}
	if outcome.Data != nil {
		raw, err := json.Marshal(outcome.Data)
		if err != nil {
			return fmt.Errorf("marshal verification data: %w", err)
		}
		check.VerificationData = raw
	}
	if outcome.Status == StatusVerified {
		verifiedAt := now
		check.VerifiedAt = &verifiedAt
	}

	switch checkType {
	case CheckTypeWWCC:
		if d, ok := outcome.Data.(WWCCData); ok && d.ExpiryDate != "" {
			if expiry, err := time.Parse(dateLayout, d.ExpiryDate); err == nil {
				check.ExpiresAt = &expiry
			}
		}
	case CheckTypePoliceCheck:
		// Expiry runs 365 days from recording time, not from the document's
		// issue date, even though the staleness rule above compares against
		// the issue date. Preserved as-is; see DESIGN.md.
		expiry := now.Add(365 * 24 * time.Hour)
		check.ExpiresAt = &expiry
	}

	if err := s.ledger.Append(ctx, check); err != nil {
		return fmt.Errorf("append verification check: %w", err)
	}
	if err := s.statuses.Set(ctx, userID, checkType, outcome.Status, now); err != nil {
		return fmt.Errorf("update verification status: %w", err)
	}

	s.metrics.IncrementOutcome(string(checkType), string(outcome.Status))

	if s.events != nil {
		event := events.CheckRecorded{
			UserID:               userID,
			CheckType:            string(checkType),
			Status:               string(outcome.Status),
			Message:              outcome.Message,
			Success:              outcome.Success,
			RequiresManualReview: outcome.RequiresManualReview,
			RecordedAt:           now,
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "check recorded event publish failed",
				"user_id", userID,
				"check_type", checkType,
				"error", err,
			)
		}
	}
	return nil
}

// IsFullyVerified reports whether all three check types are verified for the
// user. A user with no submissions is simply not fully verified.
func (s *Service) IsFullyVerified(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.statuses.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load verification status: %w", err)
	}
	return fullyVerified(user), nil
}

// Status returns the user's current per-type statuses, the full check
// history, and the aggregate fully-verified flag. The aggregate is derived
// on demand from the three status fields so it can never drift from them.
func (s *Service) Status(ctx context.Context, userID id.UserID) (StatusSummary, error) {
	var (
		user   UserVerification
		checks []Check
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.statuses.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("load verification status: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		checks, err = s.ledger.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load verification history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return StatusSummary{}, err
	}

	return StatusSummary{
		WWCC:            user.WWCCStatus,
		PoliceCheck:     user.PoliceCheckStatus,
		Identity:        user.IdentityStatus,
		WWCCLastChecked: user.WWCCLastChecked,
		FullyVerified:   fullyVerified(user),
		Checks:          checks,
	}, nil
}

func fullyVerified(user UserVerification) bool {
	return user.WWCCStatus == StatusVerified &&
		user.PoliceCheckStatus == StatusVerified &&
		user.IdentityStatus == StatusVerified
}
