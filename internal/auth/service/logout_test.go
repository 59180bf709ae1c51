package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/requestcontext"
)

func (s *ServiceSuite) TestLogout() {
	s.Run("revokes the presented token", func() {
		ctx := requestcontext.WithToken(s.ctxAs(s.regularUser), "jti-logout", s.now.Add(20*time.Minute))

		s.Require().NoError(s.service.Logout(ctx))

		revoked, err := s.service.IsTokenRevoked(ctx, "jti-logout")
		s.Require().NoError(err)
		s.True(revoked)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Logouts))
		s.Contains(s.auditActions(), audit.ActionLogout)
	})

	s.Run("revocation lapses when the token would have expired", func() {
		ctx := requestcontext.WithToken(s.ctxAs(s.regularUser), "jti-short", s.now.Add(5*time.Minute))
		s.Require().NoError(s.service.Logout(ctx))

		later := requestcontext.WithTime(ctx, s.now.Add(6*time.Minute))
		revoked, err := s.service.IsTokenRevoked(later, "jti-short")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("other tokens stay valid", func() {
		revoked, err := s.service.IsTokenRevoked(s.anonCtx(), "someone-else")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("requires an authenticated token", func() {
		err := s.service.Logout(s.ctxAs(s.regularUser))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
