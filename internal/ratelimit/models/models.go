package models

import (
	"fmt"
	"time"
)

// EndpointClass groups routes that share a limit.
type EndpointClass string

const (
	// ClassAuth covers the unauthenticated credential endpoints.
	ClassAuth EndpointClass = "auth"
)

// Key builds the bucket key for a client IP within an endpoint class.
func Key(class EndpointClass, ip string) string {
	return fmt.Sprintf("rl:%s:ip:%s", class, ip)
}

// Limit is the number of requests permitted per window.
type Limit struct {
	Requests int
	Window   time.Duration
}

type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

// RetryAfterSeconds calculates whole seconds until resetAt, rounded up.
func RetryAfterSeconds(allowed bool, resetAt, now time.Time) int {
	if allowed {
		return 0
	}
	d := resetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
