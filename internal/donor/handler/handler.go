package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/donor/models"
	"bloodbank/internal/donor/service"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/httputil"
	request "bloodbank/pkg/platform/middleware/request"
	"bloodbank/pkg/requestcontext"
)

// Service defines the donor operations used by the handler.
// Ownership and admin checks happen in the service using the caller in ctx.
type Service interface {
	Create(ctx context.Context, fields models.DonorFields) (*models.Donor, error)
	Get(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	Update(ctx context.Context, donorID id.DonorID, fields models.DonorFields) (*models.Donor, error)
	Delete(ctx context.Context, donorID id.DonorID) error
	List(ctx context.Context, q models.ListQuery) (*service.ListResult, error)
	CheckEligibility(ctx context.Context, donorID id.DonorID) (*models.EligibilityResult, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the donor routes. The router must already require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/donors", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/statistics", h.HandleStatistics)
		r.Get("/eligibility-check/{id}", h.HandleEligibility)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleCreate registers a donor owned by the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	fields, ok := httputil.DecodeJSON[models.DonorFields](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.service.Create(ctx, *fields)
	if err != nil {
		h.logFailure(ctx, "create donor failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.DonorEnvelope{
		Message: "donor created successfully",
		Donor:   models.ToDonorResponse(donor, requestcontext.Now(ctx)),
	})
}

// HandleList returns a filtered page of donors.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	query := r.URL.Query()
	req := models.ListDonorsRequest{
		BloodType:  query.Get("blood_type"),
		IsEligible: query.Get("is_eligible"),
		Page:       query.Get("page"),
		PerPage:    query.Get("per_page"),
	}
	q, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.List(ctx, q)
	if err != nil {
		h.logFailure(ctx, "list donors failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	today := requestcontext.Now(ctx)
	donors := make([]models.DonorResponse, 0, len(res.Donors))
	for _, d := range res.Donors {
		donors = append(donors, models.ToDonorResponse(d, today))
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListDonorsResponse{
		Message:    "donors retrieved successfully",
		Donors:     donors,
		Pagination: models.NewPagination(res.Page, res.Total),
	})
}

// HandleGet returns one donor.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	donorID, ok := parseDonorID(w, r)
	if !ok {
		return
	}

	donor, err := h.service.Get(ctx, donorID)
	if err != nil {
		h.logFailure(ctx, "get donor failed", err, requestID, "donor_id", donorID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.DonorEnvelope{
		Message: "donor retrieved successfully",
		Donor:   models.ToDonorResponse(donor, requestcontext.Now(ctx)),
	})
}

// HandleUpdate applies a partial update.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	donorID, ok := parseDonorID(w, r)
	if !ok {
		return
	}

	fields, ok := httputil.DecodeJSON[models.DonorFields](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.service.Update(ctx, donorID, *fields)
	if err != nil {
		h.logFailure(ctx, "update donor failed", err, requestID, "donor_id", donorID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.DonorEnvelope{
		Message: "donor updated successfully",
		Donor:   models.ToDonorResponse(donor, requestcontext.Now(ctx)),
	})
}

// HandleDelete removes a donor.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	donorID, ok := parseDonorID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, donorID); err != nil {
		h.logFailure(ctx, "delete donor failed", err, requestID, "donor_id", donorID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "donor deleted successfully"})
}

// HandleEligibility reports whether a donor may donate today.
func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	donorID, ok := parseDonorID(w, r)
	if !ok {
		return
	}

	res, err := h.service.CheckEligibility(ctx, donorID)
	if err != nil {
		h.logFailure(ctx, "eligibility check failed", err, requestID, "donor_id", donorID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToEligibilityResponse(res))
}

// HandleStatistics returns registry-wide aggregates. Admin only.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	stats, err := h.service.Statistics(ctx)
	if err != nil {
		h.logFailure(ctx, "statistics failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.StatisticsResponse{
		Message:    "statistics retrieved successfully",
		Statistics: *stats,
	})
}

func parseDonorID(w http.ResponseWriter, r *http.Request) (id.DonorID, bool) {
	donorID, err := id.ParseDonorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donor id"))
		return id.DonorID{}, false
	}
	return donorID, true
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	args := append([]any{"error", err, "request_id", requestID}, attrs...)
	if isClientError(err) {
		h.logger.WarnContext(ctx, msg, args...)
		return
	}
	h.logger.ErrorContext(ctx, msg, args...)
}

func isClientError(err error) bool {
	for _, code := range []dErrors.Code{
		dErrors.CodeNotFound, dErrors.CodeBadRequest, dErrors.CodeValidation,
		dErrors.CodeConflict, dErrors.CodeForbidden, dErrors.CodeUnauthorized,
	} {
		if dErrors.HasCode(err, code) {
			return true
		}
	}
	return false
}
