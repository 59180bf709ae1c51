package sync

import (
	"errors"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutexSerializesSameKey(t *testing.T) {
	m := NewShardedMutex()
	var wg stdsync.WaitGroup
	counter := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("donor@example.com")
			counter++
			m.Unlock("donor@example.com")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestShardedMutexDo(t *testing.T) {
	m := NewShardedMutexN(4)
	sentinel := errors.New("boom")

	err := m.Do("a@example.com", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	// the lock was released
	assert.NoError(t, m.Do("a@example.com", func() error { return nil }))
}

func TestShardIndex(t *testing.T) {
	assert.Equal(t, shardIndex("a@example.com", 32), shardIndex("a@example.com", 32), "stable for a key")
	assert.Equal(t, 0, shardIndex("anything", 1))

	seen := map[int]bool{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		idx := shardIndex(k, 8)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
		seen[idx] = true
	}
	assert.Greater(t, len(seen), 1, "keys spread over shards")
}

func TestNewShardedMutexNClampsToOne(t *testing.T) {
	m := NewShardedMutexN(0)
	assert.Len(t, m.shards, 1)
}
