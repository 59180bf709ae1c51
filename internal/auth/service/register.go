package service

import (
	"context"

	"bloodbank/internal/auth/models"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/privacy"
	"bloodbank/pkg/requestcontext"
	"bloodbank/pkg/secrets"
)

// Register creates a regular user account. The request must already be
// normalized and validated. Registration never grants the admin role.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	email := models.NormalizeEmail(req.Email)

	s.emailLocks.Lock(email)
	defer s.emailLocks.Unlock(email)

	if err := s.ensureEmailFree(ctx, email, id.UserID{}); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, hash, models.RoleUser, requestcontext.Now(ctx).UTC())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrapUserErr(err, "failed to create user")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionUserRegistered,
		Resource: audit.ResourceUser,
		ActorID:  user.ID,
		Subject:  user.ID.String(),
		Email:    privacy.MaskEmail(user.Email),
	})
	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	return user, nil
}
