package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authmetrics "bloodbank/internal/auth/metrics"
)

// RevocationStore exposes cleanup for revocation entries whose token has
// expired.
type RevocationStore interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// CleanupResult summarizes the deletions performed by a cleanup run.
type CleanupResult struct {
	PurgedRevocations int
}

// CleanupService periodically removes expired token revocations.
type CleanupService struct {
	revocations []RevocationStore
	interval    time.Duration
	logger      *slog.Logger
	metrics     *authmetrics.Metrics
	now         func() time.Time
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCleanupMetrics records the number of purged entries.
func WithCleanupMetrics(m *authmetrics.Metrics) CleanupOption {
	return func(s *CleanupService) {
		s.metrics = m
	}
}

// WithClock overrides the time source used to decide what has expired.
func WithClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a CleanupService over one or more revocation stores.
func New(revocations []RevocationStore, opts ...CleanupOption) (*CleanupService, error) {
	if len(revocations) == 0 {
		return nil, fmt.Errorf("at least one revocation store is required")
	}
	for i, r := range revocations {
		if r == nil {
			return nil, fmt.Errorf("revocation store %d is nil", i)
		}
	}
	svc := &CleanupService{
		revocations: revocations,
		interval:    5 * time.Minute,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "revocation cleanup failed", "error", err)
			}
			if res.PurgedRevocations > 0 {
				s.logger.DebugContext(ctx, "revocation cleanup completed", "purged", res.PurgedRevocations)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce purges every store once. Errors are aggregated; a failing store
// does not stop the others.
func (s *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	now := s.now()
	var res CleanupResult
	var errs []error

	for i, store := range s.revocations {
		purged, err := store.PurgeExpired(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge revocation store %d: %w", i, err))
			continue
		}
		res.PurgedRevocations += purged
	}

	if s.metrics != nil && res.PurgedRevocations > 0 {
		s.metrics.AddRevocationsPurged(res.PurgedRevocations)
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
