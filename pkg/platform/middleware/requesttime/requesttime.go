// Package requesttime pins a single "now" per HTTP request. Donor age and
// donation-interval calculations read the calendar date from it, so every
// rule evaluated within one request agrees on what "today" is.
package requesttime

import (
	"net/http"
	"time"

	"bloodbank/pkg/requestcontext"
)

// Clock returns the current time.
type Clock func() time.Time

// Middleware captures the time at the start of the request and stores it
// via requestcontext.WithTime. A nil clock uses time.Now.
func Middleware(clock Clock) func(http.Handler) http.Handler {
	if clock == nil {
		clock = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
