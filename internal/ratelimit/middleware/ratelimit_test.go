package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/ratelimit/models"
	"bloodbank/internal/ratelimit/store/bucket"
	"bloodbank/pkg/requestcontext"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, models.Limit) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

type rejectionCounter struct{ byClass map[string]int }

func (c *rejectionCounter) IncrementRateLimited(class string) { c.byClass[class]++ }

func newHandler(limiter Limiter, metrics Rejections) http.Handler {
	mw := New(limiter, map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 2, Window: time.Minute},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mw.RateLimit(models.ClassAuth)(ok)
}

func send(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit(t *testing.T) {
	t.Run("limits per client IP", func(t *testing.T) {
		counter := &rejectionCounter{byClass: map[string]int{}}
		h := newHandler(bucket.NewInMemoryBucketStore(), counter)

		first := send(h, "198.51.100.1")
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, send(h, "198.51.100.1").Code)

		denied := send(h, "198.51.100.1")
		assert.Equal(t, http.StatusTooManyRequests, denied.Code)
		assert.NotEmpty(t, denied.Header().Get("Retry-After"))

		var body models.RateLimitExceededResponse
		require.NoError(t, json.NewDecoder(denied.Body).Decode(&body))
		assert.Equal(t, "rate_limit_exceeded", body.Error)
		assert.Equal(t, 1, counter.byClass["auth"])

		assert.Equal(t, http.StatusOK, send(h, "198.51.100.2").Code)
	})

	t.Run("limiter failure lets requests through", func(t *testing.T) {
		h := newHandler(failingLimiter{}, nil)
		for range 5 {
			assert.Equal(t, http.StatusOK, send(h, "198.51.100.1").Code)
		}
	})

	t.Run("unconfigured class is not limited", func(t *testing.T) {
		mw := New(bucket.NewInMemoryBucketStore(), nil, nil, nil)
		h := mw.RateLimit(models.ClassAuth)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		for range 5 {
			assert.Equal(t, http.StatusNoContent, send(h, "198.51.100.1").Code)
		}
	})
}
