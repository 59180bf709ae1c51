package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

// TokenRevocationList tracks revoked access tokens by JTI until they expire.
type TokenRevocationList interface {
	// RevokeToken adds a token JTI to the revocation list with TTL
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked checks if a token JTI is in the revocation list
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// InMemoryTRL is a process-local revocation list. Expired entries are
// removed by PurgeExpired, which the cleanup worker calls.
// Time comes from requestcontext.Now so tests can pin it.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry timestamp
}

// NewInMemoryTRL creates a new in-memory token revocation list.
func NewInMemoryTRL() *InMemoryTRL {
	return &InMemoryTRL{revoked: make(map[string]time.Time)}
}

// RevokeToken adds a token to the revocation list with TTL.
func (t *InMemoryTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateRevocation(jti, ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = requestcontext.Now(ctx).Add(ttl)
	return nil
}

// IsRevoked checks if a token is in the revocation list.
func (t *InMemoryTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	expiry, exists := t.revoked[jti]
	if !exists {
		return false, nil
	}
	// An expired entry no longer matters: the token itself has expired.
	return requestcontext.Now(ctx).Before(expiry), nil
}

// PurgeExpired removes entries whose expiry is at or before now.
func (t *InMemoryTRL) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	purged := 0
	for jti, expiry := range t.revoked {
		if !now.Before(expiry) {
			delete(t.revoked, jti)
			purged++
		}
	}
	return purged, nil
}

// Len reports the number of tracked entries, expired or not.
func (t *InMemoryTRL) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.revoked)
}

func validateRevocation(jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("jti is required: %w", sentinel.ErrInvalidState)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
