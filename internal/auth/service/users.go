package service

import (
	"context"
	"errors"

	"bloodbank/internal/auth/models"
	"bloodbank/internal/policy"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/privacy"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

// Profile returns the authenticated caller's account.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	return user, nil
}

// ListUsers returns every account ordered by creation time. Admin only.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	if err := s.authorize(ctx, policy.ActionUserList, ""); err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, wrapUserErr(err, "failed to list users")
	}
	return users, nil
}

// UpdateUser applies an admin's partial update to another account.
func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, req *models.UpdateUserRequest) (*models.User, error) {
	if err := s.authorize(ctx, policy.ActionUserUpdate, userID.String()); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no data provided")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Role != nil {
		role, _ := models.ParseRole(*req.Role)
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = requestcontext.Now(ctx).UTC()

	persist := func() error {
		if err := s.users.Update(ctx, user); err != nil {
			return wrapUserErr(err, "failed to update user")
		}
		return nil
	}
	if req.Email != nil && *req.Email != user.Email {
		email := *req.Email
		err = s.emailLocks.Do(email, func() error {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return err
			}
			user.Email = email
			return persist()
		})
	} else {
		err = persist()
	}
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionUserUpdated,
		Resource: audit.ResourceUser,
		Subject:  user.ID.String(),
		Email:    privacy.MaskEmail(user.Email),
	})
	return user, nil
}

// DeleteUser removes an account. Admins cannot delete themselves, and a user
// who still owns donors cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if err := s.authorize(ctx, policy.ActionUserDelete, userID.String()); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return wrapUserErr(err, "failed to load user")
	}
	if user.ID == requestcontext.UserID(ctx) {
		return dErrors.New(dErrors.CodeBadRequest, "cannot delete your own account")
	}

	if s.donors != nil {
		owned, err := s.donors.CountOwnedBy(ctx, user.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count owned donors")
		}
		if owned > 0 {
			return dErrors.NewWithDetails(dErrors.CodeBadRequest,
				"cannot delete a user who still owns donors",
				map[string]any{"donors_count": owned},
			)
		}
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return wrapUserErr(err, "failed to delete user")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionUserDeleted,
		Resource: audit.ResourceUser,
		Subject:  user.ID.String(),
		Email:    privacy.MaskEmail(user.Email),
	})
	if s.metrics != nil {
		s.metrics.IncrementUsersDeleted()
	}
	return nil
}

// ensureEmailFree reports a conflict when email belongs to an account other
// than self. Lookup failures other than not-found are returned as is.
func (s *Service) ensureEmailFree(ctx context.Context, email string, self id.UserID) error {
	other, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return wrapUserErr(err, "failed to look up email")
	case other != nil && other.ID != self:
		return dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, action policy.Action, subject string) error {
	actor := policy.Actor{
		ID:   requestcontext.UserID(ctx),
		Role: requestcontext.Role(ctx),
	}
	decision := policy.Authorize(actor, nil, action)
	if decision.Allowed {
		return nil
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionAccessDenied,
		Resource: audit.ResourceUser,
		Subject:  subject,
		Decision: string(action),
		Reason:   string(decision.Reason),
	})
	return decision.Err()
}
