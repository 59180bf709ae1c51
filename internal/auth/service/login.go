package service

import (
	"context"
	"errors"

	"bloodbank/internal/auth/device"
	"bloodbank/internal/auth/models"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/privacy"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
	"bloodbank/pkg/secrets"
)

// Login failure reasons, used for metrics and audit.
const (
	reasonUnknownUser   = "unknown_user"
	reasonInactive      = "inactive"
	reasonWrongPassword = "wrong_password"
)

// Login verifies credentials and issues an access token. Every credential
// failure returns the same unauthorized error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	email := models.NormalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.loginFailed(ctx, email, reasonUnknownUser)
		}
		return nil, wrapUserErr(err, "failed to load user")
	}
	if !user.CanLogin() {
		return nil, s.loginFailed(ctx, email, reasonInactive)
	}
	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, s.loginFailed(ctx, email, reasonWrongPassword)
		}
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(ctx, user.ID, user.Role.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	expiresAt := token.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = requestcontext.Now(ctx).Add(s.tokenTTL)
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionLoginSucceeded,
		Resource: audit.ResourceUser,
		ActorID:  user.ID,
		Subject:  user.ID.String(),
		Email:    privacy.MaskEmail(user.Email),
		Device:   device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	})
	if s.metrics != nil {
		s.metrics.IncrementLoginsSucceeded()
	}
	return &models.LoginResult{
		AccessToken: token.Token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) error {
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"email", privacy.MaskEmail(email),
		"client_ip", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
	)
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionLoginFailed,
		Resource: audit.ResourceUser,
		Reason:   reason,
		Email:    privacy.MaskEmail(email),
		Device:   device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	})
	if s.metrics != nil {
		s.metrics.IncrementLoginsFailed(reason)
	}
	return errInvalidCredentials
}
