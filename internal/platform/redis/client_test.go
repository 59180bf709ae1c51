package redis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/platform/config"
)

type fakeStats struct {
	stats redis.PoolStats
}

func (f *fakeStats) PoolStats() *redis.PoolStats {
	s := f.stats
	return &s
}

func TestPoolMetricsRecord(t *testing.T) {
	m := NewPoolMetrics(prometheus.NewRegistry())
	src := &fakeStats{stats: redis.PoolStats{Hits: 5, Misses: 2, TotalConns: 4, IdleConns: 3}}

	m.Record(src)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.totalConns))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.idleConns))

	src.stats.Hits = 9
	src.stats.IdleConns = 1
	m.Record(src)
	assert.Equal(t, 9.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.idleConns))
}

func TestNewWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "not a url"})
	require.Error(t, err)
}
