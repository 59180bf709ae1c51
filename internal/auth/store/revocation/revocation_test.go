package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type InMemoryTRLSuite struct {
	suite.Suite
	store *InMemoryTRL
	now   time.Time
}

func TestInMemoryTRLSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTRLSuite))
}

func (s *InMemoryTRLSuite) SetupTest() {
	s.store = NewInMemoryTRL()
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryTRLSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *InMemoryTRLSuite) TestRevokeTokenAndIsRevoked() {
	// Given a token JTI
	jti := "jti_123"

	// When it is revoked
	err := s.store.RevokeToken(s.at(0), jti, time.Hour)
	require.NoError(s.T(), err)

	// Then it should be reported as revoked until the TTL elapses
	revoked, err := s.store.IsRevoked(s.at(59*time.Minute), jti)
	require.NoError(s.T(), err)
	assert.True(s.T(), revoked)

	revoked, err = s.store.IsRevoked(s.at(time.Hour), jti)
	require.NoError(s.T(), err)
	assert.False(s.T(), revoked)
}

func (s *InMemoryTRLSuite) TestIsRevokedNotFoundReturnsFalse() {
	revoked, err := s.store.IsRevoked(s.at(0), "missing")
	require.NoError(s.T(), err)
	assert.False(s.T(), revoked)
}

func (s *InMemoryTRLSuite) TestRejectsInvalidInput() {
	s.ErrorIs(s.store.RevokeToken(s.at(0), "", time.Hour), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.RevokeToken(s.at(0), "jti", 0), sentinel.ErrInvalidState)
}

func (s *InMemoryTRLSuite) TestPurgeExpiredRemovesOnlyExpiredEntries() {
	require.NoError(s.T(), s.store.RevokeToken(s.at(0), "short", time.Minute))
	require.NoError(s.T(), s.store.RevokeToken(s.at(0), "long", time.Hour))

	purged, err := s.store.PurgeExpired(context.Background(), s.now.Add(time.Minute))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, purged)
	assert.Equal(s.T(), 1, s.store.Len())

	revoked, err := s.store.IsRevoked(s.at(2*time.Minute), "long")
	require.NoError(s.T(), err)
	assert.True(s.T(), revoked)
}
