// Package handler exposes the verification engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"careguard/internal/authority"
	"careguard/internal/verification"
	id "careguard/pkg/domain"
	dErrors "careguard/pkg/domain-errors"
	"careguard/pkg/platform/httputil"
	"careguard/pkg/requestcontext"
)

// Service defines the engine operations the HTTP layer needs.
type Service interface {
	VerifyWWCC(ctx context.Context, userID id.UserID, req verification.WWCCRequest) (verification.Outcome, error)
	VerifyPoliceCheck(ctx context.Context, userID id.UserID, req verification.PoliceCheckRequest) (verification.Outcome, error)
	VerifyIdentityDocument(ctx context.Context, userID id.UserID, req verification.IdentityRequest) (verification.Outcome, error)
	Status(ctx context.Context, userID id.UserID) (verification.StatusSummary, error)
	IsFullyVerified(ctx context.Context, userID id.UserID) (bool, error)
}

// Handler handles verification endpoints. All routes require an
// authenticated user; the auth middleware is applied by the router.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a verification Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the verification routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/wwcc", h.handleVerifyWWCC)
	r.Post("/verification/police-check", h.handleVerifyPoliceCheck)
	r.Post("/verification/identity", h.handleVerifyIdentity)
	r.Get("/verification/status", h.handleStatus)
	r.Get("/verification/eligible", h.handleEligible)
}

// authenticatedUser pulls the user ID the auth middleware put in context.
// A nil ID here means the middleware chain is misconfigured.
func (h *Handler) authenticatedUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		h.logger.ErrorContext(r.Context(), "user id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) handleVerifyWWCC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[wwccRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if !authority.KnownNumberFormat(req.jurisdiction, req.WWCCNumber) {
		// Advisory only. Published formats lag the registries, so an odd
		// looking number still goes to the authority for the real answer.
		h.logger.InfoContext(ctx, "wwcc number does not match published format",
			"jurisdiction", req.jurisdiction,
		)
	}

	outcome, err := h.service.VerifyWWCC(ctx, userID, req.domain())
	if err != nil {
		h.writeServiceError(w, r, "wwcc verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func (h *Handler) handleVerifyPoliceCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[policeCheckRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	outcome, err := h.service.VerifyPoliceCheck(ctx, userID, req.domain())
	if err != nil {
		h.writeServiceError(w, r, "police check verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func (h *Handler) handleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[identityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	outcome, err := h.service.VerifyIdentityDocument(ctx, userID, req.domain())
	if err != nil {
		h.writeServiceError(w, r, "identity verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Status(ctx, userID)
	if err != nil {
		h.writeServiceError(w, r, "status lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(summary))
}

func (h *Handler) handleEligible(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	verified, err := h.service.IsFullyVerified(ctx, userID)
	if err != nil {
		h.writeServiceError(w, r, "eligibility lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eligibleResponse{FullyVerified: verified})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		h.logger.InfoContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
