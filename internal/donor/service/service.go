package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	donormetrics "bloodbank/internal/donor/metrics"
	"bloodbank/internal/donor/models"
	"bloodbank/internal/policy"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/platform/tracer"
	"bloodbank/pkg/requestcontext"
)

// Store defines the persistence contract for donors.
// Error contract:
//   - FindByID, Update and Delete return sentinel.ErrNotFound for unknown IDs
//   - Create and Update return sentinel.ErrAlreadyUsed when the email is taken
type Store interface {
	Create(ctx context.Context, d *models.Donor) error
	FindByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	Update(ctx context.Context, d *models.Donor) error
	Delete(ctx context.Context, donorID id.DonorID) error
	List(ctx context.Context, filter models.ListFilter, page models.Page) ([]*models.Donor, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListAll(ctx context.Context) ([]*models.Donor, error)
}

// Service orchestrates donor registration, listing, eligibility and
// statistics on behalf of the authenticated caller found in ctx.
type Service struct {
	donors  Store
	audit   *audit.Logger
	metrics *donormetrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

func New(donors Store, opts ...Option) *Service {
	s := &Service{donors: donors}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListResult is one page of donors plus the total across all pages.
type ListResult struct {
	Donors []*models.Donor
	Total  int
	Page   models.Page
}

// Create validates the fields and registers a donor owned by the caller.
func (s *Service) Create(ctx context.Context, fields models.DonorFields) (*models.Donor, error) {
	actor := actorFrom(ctx)
	if err := s.authorize(ctx, actor, nil, policy.ActionDonorCreate, ""); err != nil {
		return nil, err
	}
	if err := fields.CheckLengths(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if msgs := models.Validate(fields, false, now); len(msgs) > 0 {
		s.countValidationFailure("create")
		return nil, models.NewValidationError(msgs)
	}

	donor, err := models.NewDonor(fields, actor.ID, now.UTC())
	if err != nil {
		return nil, err
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, wrapDonorErr(err, "failed to create donor")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionDonorCreated,
		Resource: audit.ResourceDonor,
		Subject:  donor.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementDonorsCreated()
	}
	return donor, nil
}

// Get returns a donor the caller owns, or any donor for admins.
func (s *Service) Get(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	return s.loadAuthorized(ctx, donorID, policy.ActionDonorRead)
}

// Update applies a partial update. Only supplied fields are validated and
// written; the email must stay unique among other donors.
func (s *Service) Update(ctx context.Context, donorID id.DonorID, fields models.DonorFields) (*models.Donor, error) {
	donor, err := s.loadAuthorized(ctx, donorID, policy.ActionDonorUpdate)
	if err != nil {
		return nil, err
	}
	if fields.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no data provided")
	}
	if err := fields.CheckLengths(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if msgs := models.Validate(fields, true, now); len(msgs) > 0 {
		s.countValidationFailure("update")
		return nil, models.NewValidationError(msgs)
	}
	if err := donor.Apply(fields, now.UTC()); err != nil {
		return nil, err
	}
	if err := s.donors.Update(ctx, donor); err != nil {
		return nil, wrapDonorErr(err, "failed to update donor")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionDonorUpdated,
		Resource: audit.ResourceDonor,
		Subject:  donor.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementDonorsUpdated()
	}
	return donor, nil
}

// Delete removes a donor the caller owns, or any donor for admins.
func (s *Service) Delete(ctx context.Context, donorID id.DonorID) error {
	if _, err := s.loadAuthorized(ctx, donorID, policy.ActionDonorDelete); err != nil {
		return err
	}
	if err := s.donors.Delete(ctx, donorID); err != nil {
		return wrapDonorErr(err, "failed to delete donor")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionDonorDeleted,
		Resource: audit.ResourceDonor,
		Subject:  donorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementDonorsDeleted()
	}
	return nil
}

// List returns one page of donors. Non-admins only ever see their own.
// The page and the total count are loaded concurrently.
func (s *Service) List(ctx context.Context, q models.ListQuery) (result *ListResult, err error) {
	actor := actorFrom(ctx)
	if err := s.authorize(ctx, actor, nil, policy.ActionDonorList, ""); err != nil {
		return nil, err
	}

	filter := models.ListFilter{BloodType: q.BloodType, IsEligible: q.IsEligible}
	ownerScoped := !policy.Authorize(actor, nil, policy.ActionDonorListAll).Allowed
	if ownerScoped {
		owner := actor.ID
		filter.CreatedBy = &owner
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanDonorList,
		tracer.Int(tracer.AttrPage, q.Page.Number),
		tracer.Int(tracer.AttrPerPage, q.Page.PerPage),
		tracer.Bool(tracer.AttrOwnerScoped, ownerScoped),
	)
	defer func() { span.End(err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveList(time.Now())
	}

	var (
		donors []*models.Donor
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		donors, err = s.donors.List(gctx, filter, q.Page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.donors.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
	}

	span.SetAttributes(tracer.Int(tracer.AttrDonorCount, total))
	return &ListResult{Donors: donors, Total: total, Page: q.Page}, nil
}

// CheckEligibility evaluates whether a donor may donate today.
func (s *Service) CheckEligibility(ctx context.Context, donorID id.DonorID) (result *models.EligibilityResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDonorEligibility,
		tracer.String(tracer.AttrDonorID, donorID.String()),
	)
	defer func() { span.End(err) }()

	donor, err := s.loadAuthorized(ctx, donorID, policy.ActionDonorEligibility)
	if err != nil {
		return nil, err
	}

	verdict := models.EvaluateEligibility(donor, requestcontext.Now(ctx))
	span.SetAttributes(
		tracer.Bool(tracer.AttrEligible, verdict.Eligible),
		tracer.String(tracer.AttrReasonCode, string(verdict.Code)),
	)

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionEligibilityChecked,
		Resource: audit.ResourceDonor,
		Subject:  donor.ID.String(),
		Decision: eligibilityDecision(verdict.Eligible),
		Reason:   string(verdict.Code),
	})
	if s.metrics != nil {
		s.metrics.IncrementEligibilityCheck(string(verdict.Code))
	}
	return &models.EligibilityResult{Donor: donor, Verdict: verdict}, nil
}

// Statistics aggregates every donor in the registry. Admin only.
func (s *Service) Statistics(ctx context.Context) (stats *models.Statistics, err error) {
	actor := actorFrom(ctx)
	if err := s.authorize(ctx, actor, nil, policy.ActionDonorStatistics, ""); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanDonorStatistics)
	defer func() { span.End(err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveStatistics(time.Now())
	}

	donors, err := s.donors.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donors")
	}
	computed := models.ComputeStatistics(donors, requestcontext.Now(ctx))
	span.SetAttributes(tracer.Int(tracer.AttrDonorCount, computed.TotalDonors))

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionStatisticsViewed,
		Resource: audit.ResourceDonor,
	})
	return &computed, nil
}

// CountOwnedBy returns how many donors userID registered. It performs no
// authorization and is meant for other services.
func (s *Service) CountOwnedBy(ctx context.Context, userID id.UserID) (int, error) {
	n, err := s.donors.Count(ctx, models.ListFilter{CreatedBy: &userID})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count donors")
	}
	return n, nil
}

func (s *Service) loadAuthorized(ctx context.Context, donorID id.DonorID, action policy.Action) (*models.Donor, error) {
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "donor ID required")
	}
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		return nil, wrapDonorErr(err, "failed to load donor")
	}
	owner := donor.CreatedBy
	if err := s.authorize(ctx, actorFrom(ctx), &owner, action, donor.ID.String()); err != nil {
		return nil, err
	}
	return donor, nil
}

func (s *Service) authorize(ctx context.Context, actor policy.Actor, owner *id.UserID, action policy.Action, subject string) error {
	decision := policy.Authorize(actor, owner, action)
	if decision.Allowed {
		return nil
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionAccessDenied,
		Resource: audit.ResourceDonor,
		Subject:  subject,
		Decision: string(action),
		Reason:   string(decision.Reason),
	})
	return decision.Err()
}

func (s *Service) countValidationFailure(operation string) {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailures(operation)
	}
}

func actorFrom(ctx context.Context) policy.Actor {
	return policy.Actor{
		ID:   requestcontext.UserID(ctx),
		Role: requestcontext.Role(ctx),
	}
}

func eligibilityDecision(eligible bool) string {
	if eligible {
		return "eligible"
	}
	return "ineligible"
}

// wrapDonorErr translates store sentinels into domain errors.
func wrapDonorErr(err error, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "donor not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "a donor with this email already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
