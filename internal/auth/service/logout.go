package service

import (
	"context"
	"errors"
	"time"

	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

// Logout revokes the access token that authenticated the request until it
// would have expired anyway.
func (s *Service) Logout(ctx context.Context) error {
	userID := requestcontext.UserID(ctx)
	jti := requestcontext.TokenID(ctx)
	if userID.IsNil() || jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	ttl := requestcontext.TokenExpiry(ctx).Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		// Already expired; nothing left to revoke.
		ttl = time.Second
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementTRLWriteFailures()
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionLogout,
		Resource: audit.ResourceUser,
		Subject:  userID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementLogouts()
	}
	return nil
}

// IsTokenRevoked satisfies the auth middleware's revocation checker.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.trl == nil {
		return false, nil
	}
	return s.trl.IsRevoked(ctx, jti)
}

// IsAccountActive satisfies the auth middleware's account checker. Deleted
// and deactivated accounts are both reported inactive.
func (s *Service) IsAccountActive(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return user.IsActive, nil
}
