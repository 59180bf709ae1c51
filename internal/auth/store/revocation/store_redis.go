package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for revoked tokens
	revokedTokenKeyPrefix = "bloodbank:trl:jti:"
)

// LatencyObserver records revocation-check latency.
type LatencyObserver interface {
	ObserveRevocationCheck(d time.Duration)
}

// RedisTRL is a Redis-backed revocation list shared by every instance.
// Keys expire with the token, so no purge is needed.
type RedisTRL struct {
	client   redis.UniversalClient
	observer LatencyObserver
}

// RedisTRLOption configures a RedisTRL instance.
type RedisTRLOption func(*RedisTRL)

// WithLatencyObserver reports IsRevoked latency to o.
func WithLatencyObserver(o LatencyObserver) RedisTRLOption {
	return func(t *RedisTRL) {
		t.observer = o
	}
}

// NewRedisTRL constructs a Redis-backed token revocation list.
func NewRedisTRL(client redis.UniversalClient, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken stores a marker key that expires together with the token.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateRevocation(jti, ttl); err != nil {
		return err
	}
	if err := t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the marker key exists.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if t.observer != nil {
		start := time.Now()
		defer func() { t.observer.ObserveRevocationCheck(time.Since(start)) }()
	}
	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
