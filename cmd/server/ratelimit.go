package main

import (
	"log/slog"
	"net/http"

	authmetrics "bloodbank/internal/auth/metrics"
	"bloodbank/internal/platform/config"
	ratelimitmw "bloodbank/internal/ratelimit/middleware"
	"bloodbank/internal/ratelimit/models"
	"bloodbank/internal/ratelimit/store/bucket"
)

// newAuthRateLimit returns the per-IP limiter for the public auth routes, or
// nil when rate limiting is disabled. Buckets live in Redis when configured so
// that replicas share one budget.
func newAuthRateLimit(cfg *config.Config, in *infra, log *slog.Logger, m *authmetrics.Metrics) func(http.Handler) http.Handler {
	if !cfg.RateLimit.Enabled {
		log.Info("rate limiting disabled")
		return nil
	}

	var limiter ratelimitmw.Limiter
	if in.redis != nil {
		limiter = bucket.NewRedisBucketStore(in.redis.Client)
	} else {
		limiter = bucket.NewInMemoryBucketStore()
	}

	limits := map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.AuthWindow},
	}
	log.Info("rate limiting enabled",
		"class", models.ClassAuth,
		"requests", cfg.RateLimit.AuthRequests,
		"window", cfg.RateLimit.AuthWindow,
		"redis", in.redis != nil,
	)
	return ratelimitmw.New(limiter, limits, log, m).RateLimit(models.ClassAuth)
}
