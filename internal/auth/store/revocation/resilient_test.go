package revocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bloodbank/pkg/platform/circuit"
)

type flakyTRL struct {
	err     error
	revoked map[string]bool
	calls   int
}

func (f *flakyTRL) RevokeToken(_ context.Context, jti string, _ time.Duration) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = true
	return nil
}

func (f *flakyTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

type ResilientTRLSuite struct {
	suite.Suite
	primary *flakyTRL
	trl     *ResilientTRL
	ctx     context.Context
}

func TestResilientTRLSuite(t *testing.T) {
	suite.Run(t, new(ResilientTRLSuite))
}

func (s *ResilientTRLSuite) SetupTest() {
	s.primary = &flakyTRL{revoked: map[string]bool{}}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.trl = NewResilientTRL(s.primary, nil, quiet, circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	s.ctx = context.Background()
}

func (s *ResilientTRLSuite) TestHealthyPrimary() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti", time.Hour))
	s.True(s.primary.revoked["jti"])

	revoked, err := s.trl.IsRevoked(s.ctx, "jti")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.trl.IsRevoked(s.ctx, "other")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *ResilientTRLSuite) TestPrimaryDownStillRevokesLocally() {
	s.primary.err = errors.New("connection refused")

	s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti", time.Hour))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti")
	s.Require().NoError(err)
	s.True(revoked, "local list answers without reaching the primary")
}

func (s *ResilientTRLSuite) TestCircuitOpensAndFallsBack() {
	s.primary.err = errors.New("timeout")

	_, err := s.trl.IsRevoked(s.ctx, "a")
	s.Error(err, "first failure is surfaced while the circuit is closed")

	revoked, err := s.trl.IsRevoked(s.ctx, "b")
	s.NoError(err)
	s.False(revoked)
	s.True(s.trl.CircuitOpen())

	s.primary.err = nil
	_, err = s.trl.IsRevoked(s.ctx, "c")
	s.NoError(err)
	s.False(s.trl.CircuitOpen())
}
