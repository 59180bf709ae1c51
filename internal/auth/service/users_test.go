package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"bloodbank/internal/auth/models"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestProfile() {
	s.Run("returns the caller", func() {
		user, err := s.service.Profile(s.ctxAs(s.regularUser))
		s.Require().NoError(err)
		s.Equal(s.regularUser.ID, user.ID)
	})

	s.Run("anonymous caller is unauthorized", func() {
		_, err := s.service.Profile(s.anonCtx())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("deleted account is not found", func() {
		ghost := &models.User{ID: id.NewUserID(), Role: models.RoleUser}
		_, err := s.service.Profile(s.ctxAs(ghost))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListUsers() {
	s.Run("admin sees every account", func() {
		users, err := s.service.ListUsers(s.ctxAs(s.admin))
		s.Require().NoError(err)
		s.Require().Len(users, 2)
		s.ElementsMatch([]id.UserID{s.admin.ID, s.regularUser.ID}, []id.UserID{users[0].ID, users[1].ID})
	})

	s.Run("regular user is forbidden and audited", func() {
		_, err := s.service.ListUsers(s.ctxAs(s.regularUser))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(s.auditActions(), audit.ActionAccessDenied)
	})
}

func (s *ServiceSuite) TestUpdateUser() {
	s.Run("changes email, role and activation", func() {
		updated, err := s.service.UpdateUser(s.ctxAs(s.admin), s.regularUser.ID, &models.UpdateUserRequest{
			Email:    ptr(" Jane.Doe@Example.com "),
			Role:     ptr("ADMIN"),
			IsActive: ptr(false),
		})
		s.Require().NoError(err)
		s.Equal("jane.doe@example.com", updated.Email)
		s.Equal(models.RoleAdmin, updated.Role)
		s.False(updated.IsActive)
		s.Equal(s.now, updated.UpdatedAt)
		s.Contains(s.auditActions(), audit.ActionUserUpdated)
	})

	s.Run("email taken by another user is a conflict", func() {
		_, err := s.service.UpdateUser(s.ctxAs(s.admin), s.regularUser.ID, &models.UpdateUserRequest{
			Email: ptr("admin@bloodbank.test"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("keeping the same email is allowed", func() {
		_, err := s.service.UpdateUser(s.ctxAs(s.admin), s.admin.ID, &models.UpdateUserRequest{
			Email: ptr("admin@bloodbank.test"),
		})
		s.NoError(err)
	})

	s.Run("invalid input", func() {
		cases := []struct {
			name string
			req  *models.UpdateUserRequest
			code dErrors.Code
			msg  string
		}{
			{"empty body", &models.UpdateUserRequest{}, dErrors.CodeBadRequest, "no data provided"},
			{"bad email", &models.UpdateUserRequest{Email: ptr("not-an-email")}, dErrors.CodeValidation, "invalid email format"},
			{"bad role", &models.UpdateUserRequest{Role: ptr("superuser")}, dErrors.CodeValidation, "role must be one of [admin user]"},
		}
		for _, tc := range cases {
			_, err := s.service.UpdateUser(s.ctxAs(s.admin), s.admin.ID, tc.req)
			s.Require().Error(err, tc.name)
			s.True(dErrors.HasCode(err, tc.code), tc.name)
			s.Equal(tc.msg, err.Error(), tc.name)
		}
	})

	s.Run("unknown user", func() {
		_, err := s.service.UpdateUser(s.ctxAs(s.admin), id.NewUserID(), &models.UpdateUserRequest{IsActive: ptr(true)})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-admin is forbidden", func() {
		_, err := s.service.UpdateUser(s.ctxAs(s.regularUser), s.admin.ID, &models.UpdateUserRequest{IsActive: ptr(false)})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestDeleteUser() {
	s.Run("refuses to delete the caller", func() {
		err := s.service.DeleteUser(s.ctxAs(s.admin), s.admin.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("cannot delete your own account", err.Error())
	})

	s.Run("refuses while the user owns donors", func() {
		s.mockDonors.EXPECT().CountOwnedBy(gomock.Any(), s.regularUser.ID).Return(3, nil)

		err := s.service.DeleteUser(s.ctxAs(s.admin), s.regularUser.ID)
		var de *dErrors.Error
		s.Require().True(errors.As(err, &de))
		s.Equal(dErrors.CodeBadRequest, de.Code)
		s.Equal(3, de.Details["donors_count"])

		_, findErr := s.users.FindByID(context.Background(), s.regularUser.ID)
		s.NoError(findErr)
	})

	s.Run("donor count failure is internal", func() {
		s.mockDonors.EXPECT().CountOwnedBy(gomock.Any(), s.regularUser.ID).Return(0, errors.New("db down"))

		err := s.service.DeleteUser(s.ctxAs(s.admin), s.regularUser.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("deletes a user without donors", func() {
		s.mockDonors.EXPECT().CountOwnedBy(gomock.Any(), s.regularUser.ID).Return(0, nil)

		s.Require().NoError(s.service.DeleteUser(s.ctxAs(s.admin), s.regularUser.ID))

		_, err := s.users.FindByID(context.Background(), s.regularUser.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.UsersDeleted))
		s.Contains(s.auditActions(), audit.ActionUserDeleted)
	})

	s.Run("unknown user", func() {
		err := s.service.DeleteUser(s.ctxAs(s.admin), id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-admin is forbidden", func() {
		err := s.service.DeleteUser(s.ctxAs(s.regularUser), s.admin.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// unreachableEmailIndex fails every email lookup the way a dropped database
// connection would.
type unreachableEmailIndex struct {
	UserStore
}

func (unreachableEmailIndex) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection reset by peer")
}

func (s *ServiceSuite) TestEmailLookupFailureIsNotAvailability() {
	svc := New(unreachableEmailIndex{s.users}, s.trl, s.mockTokens, WithDonorCounter(s.mockDonors))

	s.Run("register", func() {
		_, err := svc.Register(s.anonCtx(), &models.RegisterRequest{Email: "new@example.com", Password: "Str0ngPass"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		_, err = s.users.FindByEmail(context.Background(), "new@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("update email", func() {
		_, err := svc.UpdateUser(s.ctxAs(s.admin), s.regularUser.ID, &models.UpdateUserRequest{
			Email: ptr("moved@example.com"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		stored, err := s.users.FindByID(context.Background(), s.regularUser.ID)
		s.Require().NoError(err)
		s.Equal("jane@example.com", stored.Email)
	})
}

func (s *ServiceSuite) TestIsAccountActive() {
	s.Run("active account", func() {
		active, err := s.service.IsAccountActive(s.anonCtx(), s.regularUser.ID)
		s.Require().NoError(err)
		s.True(active)
	})

	s.Run("deactivated account", func() {
		inactive := s.seedUser("gone.quiet@example.com", "Passw0rd", models.RoleUser, false)
		active, err := s.service.IsAccountActive(s.anonCtx(), inactive.ID)
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("deleted account", func() {
		s.mockDonors.EXPECT().CountOwnedBy(gomock.Any(), s.regularUser.ID).Return(0, nil)
		s.Require().NoError(s.service.DeleteUser(s.ctxAs(s.admin), s.regularUser.ID))

		active, err := s.service.IsAccountActive(s.anonCtx(), s.regularUser.ID)
		s.Require().NoError(err)
		s.False(active)
	})
}
