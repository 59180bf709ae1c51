// Package circuit is a two-state breaker for a dependency with a local
// fallback. It counts consecutive outcomes; it never blocks calls itself.
package circuit

import "sync"

// Transition is the state change caused by one recorded outcome.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Closed
)

// Breaker opens after a run of failures and closes after a run of successes
// while open.
type Breaker struct {
	name      string
	tripAfter int
	healAfter int

	mu        sync.Mutex
	open      bool
	failures  int
	successes int
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker (default 5).
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.tripAfter = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes close it again (default 3).
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.healAfter = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{name: name, tripAfter: 5, healAfter: 3}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

// IsOpen reports whether callers should use their fallback.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Failure records a failed call.
func (b *Breaker) Failure() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.failures++
	if !b.open && b.failures >= b.tripAfter {
		b.open = true
		return Opened
	}
	return NoChange
}

// Success records a successful call.
func (b *Breaker) Success() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if !b.open {
		return NoChange
	}
	b.successes++
	if b.successes < b.healAfter {
		return NoChange
	}
	b.open = false
	b.successes = 0
	return Closed
}
