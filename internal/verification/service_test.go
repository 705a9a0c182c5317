package verification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careguard/internal/authority"
	"careguard/internal/events"
	"careguard/internal/ocr"
	"careguard/internal/verification"
	"careguard/internal/verification/store"
	id "careguard/pkg/domain"
	"careguard/pkg/requestcontext"
)

// failingLedger simulates a write outage.
type failingLedger struct{}

func (failingLedger) Append(context.Context, verification.Check) error { return errors.New("ledger down") }
func (failingLedger) ListByUser(context.Context, id.UserID) ([]verification.Check, error) {
	return nil, errors.New("ledger down")
}

type ServiceSuite struct {
	suite.Suite
	registry  *authority.Registry
	nswClient *authority.MockClient
	extractor *ocr.MockExtractor
	ledger    *store.MemoryLedger
	statuses  *store.MemoryUserStatuses
	events    *events.ChannelPublisher
	service   *verification.Service
	userID    id.UserID
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.nswClient = &authority.MockClient{
		Response: authority.Response{
			Valid:      true,
			Status:     authority.StatusActive,
			ExpiryDate: "2027-03-15",
			FullName:   "Jane Citizen",
		},
	}
	s.registry = authority.NewRegistry()
	s.registry.Register(authority.NSW, s.nswClient)

	s.extractor = &ocr.MockExtractor{
		Extraction: ocr.Extraction{
			ExtractedName:           "Jane Citizen",
			ExtractedDocumentNumber: "P1234567",
			ExtractedDOB:            "1990-05-20",
			IsValid:                 true,
		},
	}

	s.ledger = store.NewMemoryLedger()
	s.statuses = store.NewMemoryUserStatuses()
	s.events = events.NewChannelPublisher(16)

	var err error
	s.service, err = verification.NewService(verification.Deps{
		Authorities: s.registry,
		Extractor:   s.extractor,
		Ledger:      s.ledger,
		Statuses:    s.statuses,
		Events:      s.events,
	})
	s.Require().NoError(err)

	s.userID, err = id.ParseUserID("b3f1d9a0-8a4e-4d7b-9a6c-1f2e3d4c5b6a")
	s.Require().NoError(err)

	s.now = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) wwccRequest() verification.WWCCRequest {
	return verification.WWCCRequest{
		WWCCNumber:   "WWC1234567E",
		Jurisdiction: authority.NSW,
		FirstName:    "Jane",
		LastName:     "Citizen",
		DateOfBirth:  "1990-05-20",
	}
}

func (s *ServiceSuite) policeRequest() verification.PoliceCheckRequest {
	return verification.PoliceCheckRequest{
		DocumentURL: "https://documents.example.com/clearance.pdf",
		IssueDate:   "2025-11-01",
		FirstName:   "Jane",
		LastName:    "Citizen",
	}
}

func (s *ServiceSuite) identityRequest() verification.IdentityRequest {
	return verification.IdentityRequest{
		DocumentType:   ocr.DocumentTypePassport,
		DocumentNumber: "P1234567",
		FirstName:      "Jane",
		LastName:       "Citizen",
		DateOfBirth:    "1990-05-20",
		DocumentURL:    "https://documents.example.com/passport.jpg",
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNewService() {
	s.Run("missing registry returns error", func() {
		_, err := verification.NewService(verification.Deps{Extractor: s.extractor, Ledger: s.ledger, Statuses: s.statuses})
		s.Error(err)
		s.Contains(err.Error(), "authority registry")
	})

	s.Run("missing ledger returns error", func() {
		_, err := verification.NewService(verification.Deps{Authorities: s.registry, Extractor: s.extractor, Statuses: s.statuses})
		s.Error(err)
		s.Contains(err.Error(), "ledger")
	})

	s.Run("optional deps may be nil", func() {
		svc, err := verification.NewService(verification.Deps{
			Authorities: s.registry,
			Extractor:   s.extractor,
			Ledger:      s.ledger,
			Statuses:    s.statuses,
		})
		s.NoError(err)
		s.NotNil(svc)
	})
}

// =============================================================================
// WWCC Tests
// =============================================================================

func (s *ServiceSuite) TestVerifyWWCC() {
	s.Run("active card verifies", func() {
		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		s.True(outcome.Success)
		s.Equal(verification.StatusVerified, outcome.Status)
		s.Equal("WWCC verified successfully", outcome.Message)
		s.False(outcome.RequiresManualReview)

		data, ok := outcome.Data.(verification.WWCCData)
		s.Require().True(ok)
		s.Equal("2027-03-15", data.ExpiryDate)
		s.Equal("Jane Citizen", data.VerifiedName)
	})

	s.Run("expired card rejects with authority status in message", func() {
		orig := s.nswClient.Response
		s.nswClient.Response = authority.Response{Valid: false, Status: authority.StatusExpired}
		defer func() { s.nswClient.Response = orig }()

		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		s.False(outcome.Success)
		s.Equal(verification.StatusRejected, outcome.Status)
		s.Equal("WWCC verification failed: expired", outcome.Message)
	})

	s.Run("valid flag without active status rejects", func() {
		orig := s.nswClient.Response
		s.nswClient.Response = authority.Response{Valid: true, Status: authority.StatusSuspended}
		defer func() { s.nswClient.Response = orig }()

		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		s.Equal(verification.StatusRejected, outcome.Status)
	})

	s.Run("unconfigured jurisdiction goes to manual review without a registry call", func() {
		req := s.wwccRequest()
		req.Jurisdiction = authority.TAS

		before := s.nswClient.Calls()
		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		s.False(outcome.Success)
		s.Equal(verification.StatusPending, outcome.Status)
		s.True(outcome.RequiresManualReview)
		s.Equal("WWCC verification not available for TAS. Manual review required.", outcome.Message)
		s.Equal(before, s.nswClient.Calls())
	})

	s.Run("manual fallback carries public register link when one exists", func() {
		req := s.wwccRequest()
		req.Jurisdiction = authority.VIC

		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		data, ok := outcome.Data.(verification.WWCCData)
		s.Require().True(ok)
		s.NotEmpty(data.ManualVerificationURL)
	})

	s.Run("registry outage goes to manual review, never rejection", func() {
		s.nswClient.Err = errors.New("connection refused")
		defer func() { s.nswClient.Err = nil }()

		outcome, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		s.Equal(verification.StatusPending, outcome.Status)
		s.True(outcome.RequiresManualReview)
		s.Equal("WWCC verification system unavailable. Manual review required.", outcome.Message)
	})

	s.Run("verified check records expiry from authority date", func() {
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)
		s.Require().NotNil(checks[0].ExpiresAt)
		s.Equal(time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC), *checks[0].ExpiresAt)
	})
}

// =============================================================================
// Police Check Tests
// =============================================================================

func (s *ServiceSuite) TestVerifyPoliceCheck() {
	s.Run("clean recent clearance verifies", func() {
		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)

		s.True(outcome.Success)
		s.Equal(verification.StatusVerified, outcome.Status)
		s.Equal("Police clearance verified successfully", outcome.Message)

		data, ok := outcome.Data.(verification.PoliceCheckData)
		s.Require().True(ok)
		s.Equal("2025-11-01", data.IssueDate)
	})

	s.Run("document older than 12 months rejects before extraction", func() {
		req := s.policeRequest()
		req.IssueDate = "2024-12-31"

		before := s.extractor.Calls()
		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		s.Equal(verification.StatusRejected, outcome.Status)
		s.Equal("Police clearance document is too old. Must be within 12 months.", outcome.Message)
		s.Equal(before, s.extractor.Calls(), "stale documents must not reach the extractor")
	})

	s.Run("document exactly 12 months old is still accepted", func() {
		req := s.policeRequest()
		req.IssueDate = "2025-02-10"

		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, req)
		s.Require().NoError(err)
		s.Equal(verification.StatusVerified, outcome.Status)
	})

	s.Run("document one day past the window rejects", func() {
		req := s.policeRequest()
		req.IssueDate = "2025-02-09"

		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, req)
		s.Require().NoError(err)
		s.Equal(verification.StatusRejected, outcome.Status)
	})

	s.Run("malformed issue date is a validation error", func() {
		req := s.policeRequest()
		req.IssueDate = "01/11/2025"

		_, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, req)
		s.Error(err)
	})

	s.Run("unreadable document goes to manual review", func() {
		s.extractor.Err = errors.New("ocr timeout")
		defer func() { s.extractor.Err = nil }()

		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)

		s.Equal(verification.StatusPending, outcome.Status)
		s.True(outcome.RequiresManualReview)
		s.Equal("Document could not be processed. Manual review required.", outcome.Message)
	})

	s.Run("name mismatch rejects", func() {
		req := s.policeRequest()
		req.FirstName = "Robert"

		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		s.Equal(verification.StatusRejected, outcome.Status)
		s.Equal("Name on document does not match submitted information.", outcome.Message)
	})

	s.Run("disclosed records go to manual review, not rejection", func() {
		s.extractor.Extraction.HasRecords = true
		defer func() { s.extractor.Extraction.HasRecords = false }()

		outcome, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)

		s.Equal(verification.StatusPending, outcome.Status)
		s.True(outcome.RequiresManualReview)
		s.Equal("Police clearance shows records. Manual review required.", outcome.Message)
	})

	s.Run("recorded check expires 365 days from submission time", func() {
		_, err := s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)
		s.Require().NotNil(checks[0].ExpiresAt)
		s.Equal(s.now.Add(365*24*time.Hour), *checks[0].ExpiresAt)
	})
}

// =============================================================================
// Identity Tests
// =============================================================================

func (s *ServiceSuite) TestVerifyIdentityDocument() {
	s.Run("all checks passing verifies", func() {
		outcome, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		s.True(outcome.Success)
		s.Equal(verification.StatusVerified, outcome.Status)
		s.Equal("Identity document verified successfully", outcome.Message)

		data, ok := outcome.Data.(verification.IdentityData)
		s.Require().True(ok)
		s.True(data.Checks.AllPass())
	})

	s.Run("document number mismatch rejects with breakdown", func() {
		req := s.identityRequest()
		req.DocumentNumber = "P9999999"

		outcome, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		s.Equal(verification.StatusRejected, outcome.Status)
		s.Equal("Identity document validation failed", outcome.Message)

		data, ok := outcome.Data.(verification.IdentityData)
		s.Require().True(ok)
		s.True(data.Checks.NameMatch)
		s.False(data.Checks.DocumentNumberMatch)
		s.True(data.Checks.DOBMatch)
		s.True(data.Checks.DocumentValid)
	})

	s.Run("dob mismatch rejects", func() {
		req := s.identityRequest()
		req.DateOfBirth = "1991-05-20"

		outcome, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		data, ok := outcome.Data.(verification.IdentityData)
		s.Require().True(ok)
		s.False(data.Checks.DOBMatch)
		s.Equal(verification.StatusRejected, outcome.Status)
	})

	s.Run("expired document fails the validity check", func() {
		s.extractor.Extraction.IsExpired = true
		defer func() { s.extractor.Extraction.IsExpired = false }()

		outcome, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		data, ok := outcome.Data.(verification.IdentityData)
		s.Require().True(ok)
		s.False(data.Checks.DocumentValid)
		s.Equal(verification.StatusRejected, outcome.Status)
	})

	s.Run("unreadable document goes to manual review", func() {
		s.extractor.Err = errors.New("ocr unavailable")
		defer func() { s.extractor.Err = nil }()

		outcome, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		s.Equal(verification.StatusPending, outcome.Status)
		s.True(outcome.RequiresManualReview)
	})

	s.Run("identity checks never carry an expiry", func() {
		_, err := s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)
		s.Nil(checks[0].ExpiresAt)
	})
}

// =============================================================================
// Ledger and Status Recording Tests
// =============================================================================

func (s *ServiceSuite) TestRecordCheck() {
	// Every subtest inspects ledger, status, or event state, and the suite
	// only resets fixtures per test method. Rebuild them per subtest so one
	// submission's rows cannot satisfy another subtest's assertions.
	s.Run("resubmission appends a second row instead of updating", func() {
		s.SetupTest()
		s.nswClient.Response = authority.Response{Valid: false, Status: authority.StatusExpired}
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		s.nswClient.Response = authority.Response{Valid: true, Status: authority.StatusActive, ExpiryDate: "2027-03-15"}
		_, err = s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Len(checks, 2)
	})

	s.Run("latest outcome wins on the aggregate status", func() {
		s.SetupTest()
		s.nswClient.Response = authority.Response{Valid: false, Status: authority.StatusCancelled}
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		user, err := s.statuses.Get(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(verification.StatusRejected, user.WWCCStatus)

		s.nswClient.Response = authority.Response{Valid: true, Status: authority.StatusActive}
		_, err = s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		user, err = s.statuses.Get(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(verification.StatusVerified, user.WWCCStatus)
		s.Require().NotNil(user.WWCCLastChecked)
		s.Equal(s.now, *user.WWCCLastChecked)
	})

	s.Run("verified rows carry verified_at and auto_verified", func() {
		s.SetupTest()
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)
		s.Require().NotNil(checks[0].VerifiedAt)
		s.Equal(s.now, *checks[0].VerifiedAt)
		s.True(checks[0].AutoVerified)
	})

	s.Run("manual review rows are neither verified nor auto-verified", func() {
		s.SetupTest()
		req := s.wwccRequest()
		req.Jurisdiction = authority.NT

		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, req)
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)
		s.Nil(checks[0].VerifiedAt)
		s.False(checks[0].AutoVerified)
		s.True(checks[0].ManualReviewRequired)
	})

	s.Run("outcome data round-trips through the ledger row", func() {
		s.SetupTest()
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		checks, err := s.ledger.ListByUser(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Require().NotEmpty(checks)

		var data verification.WWCCData
		s.Require().NoError(json.Unmarshal(checks[0].VerificationData, &data))
		s.Equal("2027-03-15", data.ExpiryDate)
	})

	s.Run("publishes a recorded event after persisting", func() {
		s.SetupTest()
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		select {
		case event := <-s.events.Events():
			s.Equal(s.userID, event.UserID)
			s.Equal("wwcc", event.CheckType)
			s.Equal("verified", event.Status)
			s.True(event.Success)
		default:
			s.Fail("expected a check recorded event")
		}
	})

	s.Run("ledger failure propagates and skips the status update", func() {
		s.SetupTest()
		svc, err := verification.NewService(verification.Deps{
			Authorities: s.registry,
			Extractor:   s.extractor,
			Ledger:      failingLedger{},
			Statuses:    s.statuses,
		})
		s.Require().NoError(err)

		_, err = svc.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Error(err)

		user, err := s.statuses.Get(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(verification.StatusUnset, user.WWCCStatus)
	})
}

// =============================================================================
// Cache Tests
// =============================================================================

// recordingCache is a map-backed Cache for asserting hit behavior.
type recordingCache struct {
	entries map[string]authority.Response
}

func (c *recordingCache) Get(_ context.Context, j authority.Jurisdiction, n string) (authority.Response, error) {
	if resp, ok := c.entries[string(j)+n]; ok {
		return resp, nil
	}
	return authority.Response{}, errors.New("miss")
}

func (c *recordingCache) Set(_ context.Context, j authority.Jurisdiction, n string, resp authority.Response) error {
	c.entries[string(j)+n] = resp
	return nil
}

func (s *ServiceSuite) TestAuthorityCache() {
	cache := &recordingCache{entries: make(map[string]authority.Response)}
	svc, err := verification.NewService(verification.Deps{
		Authorities:    s.registry,
		AuthorityCache: cache,
		Extractor:      s.extractor,
		Ledger:         s.ledger,
		Statuses:       s.statuses,
	})
	s.Require().NoError(err)

	s.Run("first submission calls the registry and fills the cache", func() {
		_, err := svc.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		s.Equal(1, s.nswClient.Calls())
		s.Len(cache.entries, 1)
	})

	s.Run("resubmission within the TTL skips the registry", func() {
		outcome, err := svc.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		s.Equal(verification.StatusVerified, outcome.Status)
		s.Equal(1, s.nswClient.Calls())
	})
}

// =============================================================================
// Status Aggregation Tests
// =============================================================================

func (s *ServiceSuite) TestStatus() {
	s.Run("unknown user reports all-unset and no history", func() {
		summary, err := s.service.Status(s.ctx(), s.userID)
		s.Require().NoError(err)

		s.Equal(verification.StatusUnset, summary.WWCC)
		s.Equal(verification.StatusUnset, summary.PoliceCheck)
		s.Equal(verification.StatusUnset, summary.Identity)
		s.False(summary.FullyVerified)
		s.Empty(summary.Checks)
	})

	s.Run("partial verification is not fully verified", func() {
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		_, err = s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)

		summary, err := s.service.Status(s.ctx(), s.userID)
		s.Require().NoError(err)

		s.Equal(verification.StatusVerified, summary.WWCC)
		s.Equal(verification.StatusVerified, summary.PoliceCheck)
		s.Equal(verification.StatusUnset, summary.Identity)
		s.False(summary.FullyVerified)
		s.Len(summary.Checks, 2)
	})

	s.Run("all three verified flips the aggregate", func() {
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		_, err = s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)
		_, err = s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		summary, err := s.service.Status(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.True(summary.FullyVerified)

		verified, err := s.service.IsFullyVerified(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.True(verified)
	})

	s.Run("a rejection after verification revokes eligibility", func() {
		_, err := s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)
		_, err = s.service.VerifyPoliceCheck(s.ctx(), s.userID, s.policeRequest())
		s.Require().NoError(err)
		_, err = s.service.VerifyIdentityDocument(s.ctx(), s.userID, s.identityRequest())
		s.Require().NoError(err)

		s.nswClient.Response = authority.Response{Valid: false, Status: authority.StatusCancelled}
		_, err = s.service.VerifyWWCC(s.ctx(), s.userID, s.wwccRequest())
		s.Require().NoError(err)

		verified, err := s.service.IsFullyVerified(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.False(verified)
	})
}
