package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"bloodbank/internal/auth/models"
	jwttoken "bloodbank/internal/jwt_token"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/requestcontext"
)

func (s *ServiceSuite) TestLogin() {
	s.Run("issues a token carrying the user's role", func() {
		expiresAt := s.now.Add(30 * time.Minute)
		s.mockTokens.EXPECT().
			GenerateAccessToken(gomock.Any(), s.admin.ID, "admin").
			Return(&jwttoken.IssuedToken{Token: "signed", JTI: "jti-1", ExpiresAt: expiresAt}, nil)

		ctx := requestcontext.WithClientMetadata(s.anonCtx(), "203.0.113.9",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		result, err := s.service.Login(ctx, &models.LoginRequest{
			Email:    "Admin@BloodBank.test",
			Password: "Admin123",
		})
		s.Require().NoError(err)
		s.Equal("signed", result.AccessToken)
		s.Equal(expiresAt, result.ExpiresAt)
		s.Equal(s.admin.ID, result.User.ID)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginsSucceeded))

		events, err := s.events.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionLoginSucceeded, last.Action)
		s.Equal("a***@bloodbank.test", last.Email)
		s.Contains(last.Device, "Chrome")
	})

	s.Run("falls back to the configured ttl when the issuer sets no expiry", func() {
		s.mockTokens.EXPECT().
			GenerateAccessToken(gomock.Any(), s.regularUser.ID, "user").
			Return(&jwttoken.IssuedToken{Token: "signed"}, nil)

		result, err := s.service.Login(s.anonCtx(), &models.LoginRequest{
			Email:    "jane@example.com",
			Password: "Passw0rd",
		})
		s.Require().NoError(err)
		s.Equal(s.now.Add(30*time.Minute), result.ExpiresAt)
	})

	s.Run("wrong password, unknown user and inactive account look the same", func() {
		s.seedUser("sleepy@example.com", "Passw0rd", models.RoleUser, false)

		cases := []struct {
			name   string
			req    *models.LoginRequest
			reason string
		}{
			{"wrong password", &models.LoginRequest{Email: "jane@example.com", Password: "Wrong000"}, reasonWrongPassword},
			{"unknown user", &models.LoginRequest{Email: "ghost@example.com", Password: "Passw0rd"}, reasonUnknownUser},
			{"inactive", &models.LoginRequest{Email: "sleepy@example.com", Password: "Passw0rd"}, reasonInactive},
		}
		for _, tc := range cases {
			_, err := s.service.Login(s.anonCtx(), tc.req)
			s.Require().Error(err, tc.name)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), tc.name)
			s.Equal("invalid credentials", err.Error(), tc.name)
			s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginsFailed.WithLabelValues(tc.reason)), tc.name)
		}
		s.Contains(s.auditActions(), audit.ActionLoginFailed)
	})

	s.Run("token issuing failure is internal", func() {
		s.mockTokens.EXPECT().
			GenerateAccessToken(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("signer unavailable"))

		_, err := s.service.Login(s.anonCtx(), &models.LoginRequest{
			Email:    "jane@example.com",
			Password: "Passw0rd",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
