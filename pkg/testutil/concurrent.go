package testutil

import (
	"errors"
	"sync"

	"bloodbank/pkg/platform/sentinel"
)

// RaceOutcome counts how a batch of parallel calls ended.
type RaceOutcome struct {
	Successes int
	Conflicts int
	NotFounds int
	Errors    int
	// Failures holds every non-nil error in completion order.
	Failures []error
}

// Race starts n goroutines behind a shared gate so they call fn as close to
// simultaneously as possible, then tallies the results. Errors wrapping
// sentinel.ErrAlreadyUsed count as conflicts and sentinel.ErrNotFound as
// not-founds; anything else is an error.
func Race(n int, fn func(i int) error) RaceOutcome {
	var (
		out  RaceOutcome
		mu   sync.Mutex
		wg   sync.WaitGroup
		gate = make(chan struct{})
	)
	for i := range n {
		wg.Go(func() {
			<-gate
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.Successes++
				return
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				out.Conflicts++
			case errors.Is(err, sentinel.ErrNotFound):
				out.NotFounds++
			default:
				out.Errors++
			}
			out.Failures = append(out.Failures, err)
		})
	}
	close(gate)
	wg.Wait()
	return out
}
