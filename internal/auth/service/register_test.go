package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"bloodbank/internal/auth/models"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/secrets"
	ptestutil "bloodbank/pkg/testutil"
)

func (s *ServiceSuite) TestRegister() {
	s.Run("creates an active regular user with a hashed password", func() {
		user, err := s.service.Register(s.anonCtx(), &models.RegisterRequest{
			Email:    "  New.Donor@Example.COM ",
			Password: "Str0ngPass",
		})
		s.Require().NoError(err)
		s.Equal("new.donor@example.com", user.Email)
		s.Equal(models.RoleUser, user.Role)
		s.True(user.IsActive)
		s.Equal(s.now, user.CreatedAt)
		s.NotEqual("Str0ngPass", user.PasswordHash)
		s.NoError(secrets.Verify("Str0ngPass", user.PasswordHash))

		stored, err := s.users.FindByEmail(context.Background(), "new.donor@example.com")
		s.Require().NoError(err)
		s.Equal(user.ID, stored.ID)

		s.Contains(s.auditActions(), audit.ActionUserRegistered)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.UsersRegistered))
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.service.Register(s.anonCtx(), &models.RegisterRequest{
			Email:    "JANE@example.com",
			Password: "Str0ngPass",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("a user with this email already exists", err.Error())
	})

	s.Run("nil request", func() {
		_, err := s.service.Register(s.anonCtx(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("concurrent registrations for one email create a single user", func() {
		res := ptestutil.Race(4, func(int) error {
			_, err := s.service.Register(s.anonCtx(), &models.RegisterRequest{
				Email:    "race@example.com",
				Password: "Str0ngPass",
			})
			return err
		})

		s.Equal(1, res.Successes)
		s.Len(res.Failures, 3)
		for _, err := range res.Failures {
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		}
	})
}
