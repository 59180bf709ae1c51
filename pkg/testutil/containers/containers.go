//go:build integration

// Package containers starts the backing services integration tests run
// against. Each container starts on first use and is shared by every suite in
// the test binary; Ryuk removes them when the process exits.
package containers

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// Manager hands out the shared containers.
type Manager struct {
	postgres lazy[*PostgresContainer]
	redis    lazy[*RedisContainer]
	kafka    lazy[*KafkaContainer]
}

var manager = &Manager{}

// GetManager returns the process-wide manager.
func GetManager() *Manager { return manager }

// GetPostgres returns a migrated Postgres database.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, startPostgres)
}

// GetRedis returns a Redis server with an open client.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t, startRedis)
}

// GetKafka returns a Kafka-compatible broker.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, startKafka)
}

// lazy starts a value once. A failed start is retried by the next caller so
// one flaky pull does not poison the whole binary.
type lazy[T any] struct {
	mu  sync.Mutex
	val T
	ok  bool
}

func (l *lazy[T]) get(t *testing.T, start func(context.Context) (T, error)) T {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ok {
		v, err := start(context.Background())
		if err != nil {
			t.Fatalf("start container: %v", err)
		}
		l.val, l.ok = v, true
	}
	return l.val
}

// abandon terminates a container whose setup failed after it started.
func abandon(ctx context.Context, c testcontainers.Container, err error) error {
	_ = c.Terminate(ctx)
	return err
}
