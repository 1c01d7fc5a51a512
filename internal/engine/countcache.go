package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
)

// CountCache memoizes total-count results per query fingerprint in Redis for
// a short TTL. It lives entirely inside the engine: the query core stays
// cache-free. A nil cache (no Redis configured) means every count hits the
// database.
type CountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCountCache(rdb *redis.Client, ttl time.Duration) *CountCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &CountCache{rdb: rdb, ttl: ttl}
}

// Fingerprint derives the cache key from the exact SQL and arguments.
func Fingerprint(sqlStr string, args []any) string {
	h := sha256.New()
	h.Write([]byte(sqlStr))
	if enc, err := json.Marshal(args); err == nil {
		h.Write(enc)
	}
	return "relatedcount:" + hex.EncodeToString(h.Sum(nil))
}

func (c *CountCache) Get(ctx context.Context, key string) (uint64, bool) {
	if c == nil {
		return 0, false
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		// a corrupt entry is dropped, not trusted
		_ = c.rdb.Del(ctx, key).Err()
		return 0, false
	}
	return count, true
}

func (c *CountCache) Set(ctx context.Context, key string, count uint64) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, fmt.Sprintf("%d", count), c.ttl).Err(); err != nil {
		logger.Debug("count_cache_set_failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}
