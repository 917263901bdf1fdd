package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// VectorCache caches query-text embeddings so the retrieval API does not call
// the embedding endpoint for every repeated query. Misses are never errors;
// a broken cache degrades to recomputation.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32)
}

// Key builds the cache key from the embedding model and query text, so a
// model change never serves stale vectors.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "qvec:" + hex.EncodeToString(sum[:])
}

// MemoryCache is the in-process cache, used when no Redis is configured.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]float32, bool) {
	if v, ok := m.c.Get(key); ok {
		if vec, ok := v.([]float32); ok {
			return vec, true
		}
	}
	return nil, false
}

func (m *MemoryCache) Set(ctx context.Context, key string, vec []float32) {
	m.c.SetDefault(key, vec)
}

// RedisCache shares the query-vector cache across API replicas.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (r *RedisCache) Set(ctx context.Context, key string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	r.rdb.Set(ctx, key, data, r.ttl)
}
