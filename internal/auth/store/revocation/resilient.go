package revocation

import (
	"context"
	"log/slog"
	"time"

	"bloodbank/pkg/platform/circuit"
)

// ResilientTRL wraps a shared revocation list with circuit breaker
// protection. Every revocation is also recorded locally, so this instance
// keeps rejecting logged-out tokens while the shared list is unreachable.
type ResilientTRL struct {
	primary TokenRevocationList
	local   *InMemoryTRL
	cb      *circuit.Breaker
	logger  *slog.Logger
}

// NewResilientTRL creates a circuit-breaker-protected revocation list.
func NewResilientTRL(primary TokenRevocationList, local *InMemoryTRL, logger *slog.Logger, opts ...circuit.Option) *ResilientTRL {
	if local == nil {
		local = NewInMemoryTRL()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientTRL{
		primary: primary,
		local:   local,
		cb:      circuit.New("token_revocation", opts...),
		logger:  logger,
	}
}

// RevokeToken records the JTI locally, then in the shared list. A shared
// list failure is logged, not returned, once the local write succeeded.
func (r *ResilientTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.local.RevokeToken(ctx, jti, ttl); err != nil {
		return err
	}
	if err := r.primary.RevokeToken(ctx, jti, ttl); err != nil {
		r.recordFailure(ctx, err)
		r.logger.WarnContext(ctx, "revocation kept locally only",
			"error", err,
			"circuit", r.cb.Name(),
		)
		return nil
	}
	r.recordSuccess(ctx)
	return nil
}

// IsRevoked consults the local list first, then the shared list. When the
// circuit is open a shared-list error is swallowed and the local answer used.
func (r *ResilientTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := r.local.IsRevoked(ctx, jti)
	if err != nil {
		return false, err
	}
	if revoked {
		return true, nil
	}

	revoked, err = r.primary.IsRevoked(ctx, jti)
	if err != nil {
		if useFallback := r.recordFailure(ctx, err); useFallback {
			r.logger.WarnContext(ctx, "circuit open, using local revocation list",
				"circuit", r.cb.Name(),
			)
			return false, nil
		}
		return false, err
	}
	r.recordSuccess(ctx)
	return revoked, nil
}

// PurgeExpired trims the local list. The shared list expires on its own.
func (r *ResilientTRL) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return r.local.PurgeExpired(ctx, now)
}

// CircuitOpen reports whether the shared list is currently bypassed.
func (r *ResilientTRL) CircuitOpen() bool {
	return r.cb.IsOpen()
}

// recordFailure reports whether the caller should fall back to the local list.
func (r *ResilientTRL) recordFailure(ctx context.Context, err error) bool {
	if r.cb.Failure() == circuit.Opened {
		r.logger.ErrorContext(ctx, "circuit breaker opened",
			"circuit", r.cb.Name(),
			"error", err,
		)
	}
	return r.cb.IsOpen()
}

func (r *ResilientTRL) recordSuccess(ctx context.Context) {
	if r.cb.Success() == circuit.Closed {
		r.logger.InfoContext(ctx, "circuit breaker closed",
			"circuit", r.cb.Name(),
		)
	}
}
