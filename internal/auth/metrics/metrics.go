package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	UsersRegistered         prometheus.Counter
	UsersDeleted            prometheus.Counter
	LoginsSucceeded         prometheus.Counter
	LoginsFailed            *prometheus.CounterVec
	Logouts                 prometheus.Counter
	TRLWriteFailures        prometheus.Counter
	RevocationsPurged       prometheus.Counter
	RevocationCheckDuration prometheus.Histogram
	RateLimited             *prometheus.CounterVec
}

// New registers auth metrics with reg, or the default registerer when nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_users_registered_total",
			Help: "Total number of self-registered users",
		}),
		UsersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_users_deleted_total",
			Help: "Total number of users deleted by an admin",
		}),
		LoginsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
		LoginsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_logins_failed_total",
			Help: "Failed logins by reason",
		}, []string{"reason"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_logouts_total",
			Help: "Total number of logouts",
		}),
		TRLWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_trl_write_failures_total",
			Help: "Total number of token revocation list write failures",
		}),
		RevocationsPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_revocations_purged_total",
			Help: "Expired revocation entries removed by the cleanup worker",
		}),
		RevocationCheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodbank_revocation_check_duration_seconds",
			Help:    "Latency of token revocation checks",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

func (m *Metrics) IncrementUsersDeleted() {
	m.UsersDeleted.Inc()
}

func (m *Metrics) IncrementLoginsSucceeded() {
	m.LoginsSucceeded.Inc()
}

func (m *Metrics) IncrementLoginsFailed(reason string) {
	m.LoginsFailed.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}

func (m *Metrics) IncrementTRLWriteFailures() {
	m.TRLWriteFailures.Inc()
}

func (m *Metrics) AddRevocationsPurged(n int) {
	m.RevocationsPurged.Add(float64(n))
}

// ObserveRevocationCheck satisfies revocation.LatencyObserver.
func (m *Metrics) ObserveRevocationCheck(d time.Duration) {
	m.RevocationCheckDuration.Observe(d.Seconds())
}

// IncrementRateLimited satisfies the rate limit middleware's Rejections.
func (m *Metrics) IncrementRateLimited(class string) {
	m.RateLimited.WithLabelValues(class).Inc()
}
