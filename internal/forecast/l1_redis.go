package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// RedisL1 is the optional distributed L1 backend selected by
// FORECAST_CACHE_BACKEND=redis (SPEC_FULL.md §4.5 "optional redis-backed
// L1 cache"), so multiple process replicas share one L1 tier instead of
// each warming its own. Key shape mirrors MemoryL1's (location_id,
// hour-floor) pair, serialized as the redis key string.
type RedisL1 struct {
	client *redis.Client
	prefix string
}

// NewRedisL1 wraps an existing *redis.Client (a real server, or
// alicebob/miniredis/v2 in tests).
func NewRedisL1(client *redis.Client) *RedisL1 {
	return &RedisL1{client: client, prefix: "weathercomment:forecast:l1:"}
}

func (r *RedisL1) key(locationID string, hourFloor time.Time) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, locationID, hourFloor.Unix())
}

func (r *RedisL1) Get(ctx context.Context, locationID string, hourFloor time.Time) (domain.ForecastCollection, bool) {
	raw, err := r.client.Get(ctx, r.key(locationID, hourFloor)).Bytes()
	if err != nil {
		return domain.ForecastCollection{}, false
	}
	var fc domain.ForecastCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return domain.ForecastCollection{}, false
	}
	return fc, true
}

func (r *RedisL1) Set(ctx context.Context, locationID string, hourFloor time.Time, fc domain.ForecastCollection, ttl time.Duration) {
	raw, err := json.Marshal(fc)
	if err != nil {
		return
	}
	r.client.Set(ctx, r.key(locationID, hourFloor), raw, ttl)
}

func (r *RedisL1) Len() int {
	ctx := context.Background()
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}
