package conversation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conv:thread:"

// RedisRegistry keeps conversation bindings in Redis so continuity survives
// process restarts. Same contract as MemoryRegistry; lookup misses and
// transport errors both read as "not found", which just costs a fresh thread.
type RedisRegistry struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisRegistry(ctx context.Context, host, port, pass string, db int, dialTimeout, ttl time.Duration) (*RedisRegistry, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: dialTimeout,
		Password:    pass,
		DB:          db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s:%s): %w", host, port, err)
	}
	return &RedisRegistry{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.New(log.Writer(), "[REGISTRY] ", log.LstdFlags),
	}, nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, externalID string) (string, bool) {
	if externalID == "" {
		return "", false
	}
	threadID, err := r.rdb.Get(ctx, redisKeyPrefix+externalID).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Printf("resolve %s: %v", externalID, err)
		}
		return "", false
	}
	return threadID, threadID != ""
}

func (r *RedisRegistry) Bind(ctx context.Context, externalID, threadID string) {
	if externalID == "" || threadID == "" {
		return
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+externalID, threadID, r.ttl).Err(); err != nil {
		r.logger.Printf("bind %s: %v", externalID, err)
	}
}

func (r *RedisRegistry) Close() error { return r.rdb.Close() }
