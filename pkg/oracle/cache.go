package oracle

import (
	"hash/fnv"
	"sync"
	"time"
)

const cacheShardCount = 16

// balanceCache is a process-wide TTL cache of balance records, sharded by
// address hash to keep concurrent resolves on different addresses from
// contending on a single lock. Records are immutable once stored.
type balanceCache struct {
	shards [cacheShardCount]*cacheShard
	ttl    time.Duration
}

type cacheShard struct {
	sync.RWMutex
	records map[string]cacheEntry
}

type cacheEntry struct {
	record    Record
	expiresAt time.Time
}

func newBalanceCache(ttl time.Duration) *balanceCache {
	cache := &balanceCache{ttl: ttl}
	for i := range cache.shards {
		cache.shards[i] = &cacheShard{records: make(map[string]cacheEntry)}
	}
	return cache
}

func (c *balanceCache) shard(address string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(address))
	return c.shards[int(h.Sum32())%cacheShardCount]
}

func (c *balanceCache) get(address string) (Record, bool) {
	shard := c.shard(address)
	shard.RLock()
	entry, ok := shard.records[address]
	shard.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return Record{}, false
	}
	return entry.record, true
}

func (c *balanceCache) put(record Record) {
	shard := c.shard(record.Address)
	shard.Lock()
	defer shard.Unlock()

	shard.records[record.Address] = cacheEntry{
		record:    record,
		expiresAt: time.Now().Add(c.ttl),
	}
}
