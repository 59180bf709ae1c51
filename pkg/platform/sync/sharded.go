// Package sync holds keyed locking helpers.
package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 32

// ShardedMutex serializes work per key without one global lock. Keys that
// hash to the same shard share a mutex.
type ShardedMutex struct {
	shards []sync.Mutex
}

// NewShardedMutex returns a mutex set with 32 shards.
func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(defaultShards)
}

// NewShardedMutexN returns a mutex set with n shards (at least one).
func NewShardedMutexN(n int) *ShardedMutex {
	if n < 1 {
		n = 1
	}
	return &ShardedMutex{shards: make([]sync.Mutex, n)}
}

func (m *ShardedMutex) Lock(key string)   { m.shard(key).Lock() }
func (m *ShardedMutex) Unlock(key string) { m.shard(key).Unlock() }

// Do runs fn while holding the lock for key.
func (m *ShardedMutex) Do(key string, fn func() error) error {
	mu := m.shard(key)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (m *ShardedMutex) shard(key string) *sync.Mutex {
	return &m.shards[shardIndex(key, len(m.shards))]
}

func shardIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
