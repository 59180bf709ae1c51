package service

import (
	"context"
	"log/slog"
	"time"

	authmetrics "bloodbank/internal/auth/metrics"
	"bloodbank/internal/auth/models"
	"bloodbank/internal/auth/store/revocation"
	jwttoken "bloodbank/internal/jwt_token"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/sync"
)

// UserStore defines the persistence interface for accounts.
// Error Contract:
//   - Find methods, Update and Delete return sentinel.ErrNotFound for unknown users
//   - Create and Update return sentinel.ErrAlreadyUsed when the email is taken
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	ListAll(ctx context.Context) ([]*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(ctx context.Context, userID id.UserID, role string) (*jwttoken.IssuedToken, error)
}

// DonorCounter reports how many donors a user registered. Deleting a user
// who still owns donors is refused.
type DonorCounter interface {
	CountOwnedBy(ctx context.Context, userID id.UserID) (int, error)
}

// Service handles account registration, login, logout and admin user
// management.
type Service struct {
	users   UserStore
	trl     revocation.TokenRevocationList
	tokens  TokenIssuer
	donors  DonorCounter
	audit   *audit.Logger
	metrics *authmetrics.Metrics
	logger  *slog.Logger

	// registration is serialized per email so two concurrent sign-ups for
	// the same address cannot both pass the existence check.
	emailLocks *sync.ShardedMutex
	tokenTTL   time.Duration
}

const defaultTokenTTL = time.Hour

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDonorCounter enables the owned-donors check on user deletion.
func WithDonorCounter(c DonorCounter) Option {
	return func(s *Service) {
		s.donors = c
	}
}

// WithTokenTTL is used to report expires_in when the issuer does not set an
// expiry. Zero or negative values keep the default of one hour.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, trl revocation.TokenRevocationList, tokens TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		users:      users,
		trl:        trl,
		tokens:     tokens,
		emailLocks: sync.NewShardedMutex(),
		tokenTTL:   defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}
