package dialog

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow implements the dedup window on redis. SET NX with a PX expiry
// matches the memory semantics exactly: a live key suppresses without being
// refreshed, an expired or absent key is re-inserted with a fresh TTL.
type RedisWindow struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisWindow(rdb *redis.Client, ttl time.Duration) *RedisWindow {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisWindow{rdb: rdb, ttl: ttl, prefix: "dedup:"}
}

func (w *RedisWindow) ShouldSuppress(ctx context.Context, text string) bool {
	inserted, err := w.rdb.SetNX(ctx, w.prefix+text, 1, w.ttl).Result()
	if err != nil {
		// fail open: a broken redis should not drop lines
		log.Printf("dedup: redis setnx failed: %v", err)
		return false
	}
	return !inserted
}
