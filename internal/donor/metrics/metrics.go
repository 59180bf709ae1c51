package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DonorsCreated      prometheus.Counter
	DonorsUpdated      prometheus.Counter
	DonorsDeleted      prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	EligibilityChecks  *prometheus.CounterVec
	StatisticsDuration prometheus.Histogram
	ListDuration       prometheus.Histogram
}

// New registers donor metrics with reg, or the default registerer when nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		DonorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donors_created_total",
			Help: "Total number of donors created",
		}),
		DonorsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donors_updated_total",
			Help: "Total number of donor updates",
		}),
		DonorsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donors_deleted_total",
			Help: "Total number of donors deleted",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_donor_validation_failures_total",
			Help: "Donor payloads rejected by validation, by operation",
		}, []string{"operation"}),
		EligibilityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_eligibility_checks_total",
			Help: "Eligibility checks by outcome reason code",
		}, []string{"reason"}),
		StatisticsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodbank_statistics_duration_seconds",
			Help:    "Time to load and aggregate donor statistics",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodbank_donor_list_duration_seconds",
			Help:    "Time to load one page of donors plus the total count",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementDonorsCreated() {
	m.DonorsCreated.Inc()
}

func (m *Metrics) IncrementDonorsUpdated() {
	m.DonorsUpdated.Inc()
}

func (m *Metrics) IncrementDonorsDeleted() {
	m.DonorsDeleted.Inc()
}

// IncrementValidationFailures counts a rejected payload; operation is "create" or "update".
func (m *Metrics) IncrementValidationFailures(operation string) {
	m.ValidationFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementEligibilityCheck(reason string) {
	m.EligibilityChecks.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveStatistics(start time.Time) {
	m.StatisticsDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
