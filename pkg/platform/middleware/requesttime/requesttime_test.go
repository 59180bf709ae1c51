package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/pkg/requestcontext"
)

func serve(clock Clock, read func(r *http.Request)) {
	h := Middleware(clock)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		read(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/donors", nil))
}

func TestPinsClockReadingForTheWholeRequest(t *testing.T) {
	ticks := 0
	base := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}

	var reads []time.Time
	serve(clock, func(r *http.Request) {
		reads = append(reads, requestcontext.Now(r.Context()), requestcontext.Now(r.Context()))
	})

	require.Len(t, reads, 2)
	assert.Equal(t, 1, ticks, "clock is read once per request")
	assert.Equal(t, reads[0], reads[1])
	assert.Equal(t, base.Add(time.Second), reads[0])
}

func TestNilClockUsesWallTime(t *testing.T) {
	before := time.Now()
	var got time.Time
	serve(nil, func(r *http.Request) { got = requestcontext.Now(r.Context()) })

	assert.False(t, got.Before(before))
	assert.False(t, got.After(time.Now()))
}
