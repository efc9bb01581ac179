package forecast

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// L1Cache is the sharded in-memory LRU (spec §4.5 L1): keyed by
// (location_id, floor(target_datetime, hour)), capacity default 500, TTL
// default 300s, LRU eviction, safe for concurrent readers.
type L1Cache interface {
	Get(ctx context.Context, locationID string, hourFloor time.Time) (domain.ForecastCollection, bool)
	Set(ctx context.Context, locationID string, hourFloor time.Time, fc domain.ForecastCollection, ttl time.Duration)
	Len() int
}

const l1ShardCount = 16

type l1Key struct {
	locationID string
	hourFloor  time.Time
}

// MemoryL1 is a hand-rolled sharded map+TTL cache, generalized from
// weather-alert-service/internal/cache/cache.go's InMemoryCache (map +
// expiresAt, lazy expiry-on-read) into 16 lock-striped shards each with
// its own LRU eviction list. The shard is chosen by FNV-32a of the location
// id and Get takes that shard's exclusive lock, so locations in different
// shards do not contend, while locations hashing to the same shard do.
type MemoryL1 struct {
	capacityPerShard int
	shards           [l1ShardCount]*l1Shard
}

type l1Shard struct {
	mu    sync.RWMutex
	data  map[l1Key]domain.CacheEntry[domain.ForecastCollection]
	order []l1Key
}

// NewMemoryL1 builds a capacity-capped sharded LRU. capacity is the total
// budget across all shards (spec default 500).
func NewMemoryL1(capacity int) *MemoryL1 {
	if capacity <= 0 {
		capacity = 500
	}
	m := &MemoryL1{capacityPerShard: max(1, capacity/l1ShardCount)}
	for i := range m.shards {
		m.shards[i] = &l1Shard{data: make(map[l1Key]domain.CacheEntry[domain.ForecastCollection])}
	}
	return m
}

func (m *MemoryL1) shardFor(key l1Key) *l1Shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.locationID))
	return m.shards[h.Sum32()%l1ShardCount]
}

func (m *MemoryL1) Get(_ context.Context, locationID string, hourFloor time.Time) (domain.ForecastCollection, bool) {
	key := l1Key{locationID: locationID, hourFloor: hourFloor}
	shard := m.shardFor(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.data[key]
	if !ok {
		return domain.ForecastCollection{}, false
	}
	if entry.Expired(time.Now()) {
		delete(shard.data, key)
		shard.removeFromOrder(key)
		return domain.ForecastCollection{}, false
	}
	entry.LastAccessed = time.Now()
	shard.data[key] = entry
	shard.touch(key)
	return entry.Value, true
}

func (m *MemoryL1) Set(_ context.Context, locationID string, hourFloor time.Time, fc domain.ForecastCollection, ttl time.Duration) {
	key := l1Key{locationID: locationID, hourFloor: hourFloor}
	shard := m.shardFor(key)
	now := time.Now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, exists := shard.data[key]; !exists && len(shard.data) >= m.capacityPerShard {
		if len(shard.order) > 0 {
			oldest := shard.order[0]
			shard.order = shard.order[1:]
			delete(shard.data, oldest)
		}
	}
	shard.data[key] = domain.NewCacheEntry(key.locationID, fc, now, ttl)
	shard.touch(key)
}

func (m *MemoryL1) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}

// Trim evicts the oldest fraction entries from every shard, the memory-
// pressure eviction path spec §5 names as an optional degrade-under-load
// mechanism distinct from the per-Set capacity cap. fraction is clamped to
// [0,1]; 0.25 drops the oldest quarter of each shard's entries.
func (m *MemoryL1) Trim(fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	evicted := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n := int(float64(len(s.order)) * fraction)
		for i := 0; i < n && len(s.order) > 0; i++ {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.data, oldest)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

func (s *l1Shard) touch(key l1Key) {
	s.removeFromOrder(key)
	s.order = append(s.order, key)
}

func (s *l1Shard) removeFromOrder(key l1Key) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// HourFloor truncates t to the start of its hour in UTC, the L1 key
// granularity from spec §4.5.
func HourFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
}
