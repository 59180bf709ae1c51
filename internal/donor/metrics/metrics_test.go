package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementDonorsCreated()
	m.IncrementDonorsCreated()
	m.IncrementDonorsUpdated()
	m.IncrementDonorsDeleted()
	m.IncrementValidationFailures("create")
	m.IncrementEligibilityCheck("eligible")
	m.IncrementEligibilityCheck("eligible")
	m.IncrementEligibilityCheck("too_young")
	m.ObserveStatistics(time.Now())
	m.ObserveList(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DonorsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DonorsUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DonorsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EligibilityChecks.WithLabelValues("eligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EligibilityChecks.WithLabelValues("too_young")))

	n, err := testutil.GatherAndCount(reg, "bloodbank_statistics_duration_seconds", "bloodbank_donor_list_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
