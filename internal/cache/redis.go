package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache namespaces every key under a prefix so Flush can clear this
// service's aggregates without touching anything else on the instance.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	log    *logrus.Entry
}

func NewRedisCache(logger *logrus.Logger, rdb *redis.Client, prefix string) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: strings.Trim(prefix, ":") + ":",
		log:    logger.WithField("component", "redis_cache"),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.WithError(err).Warn("Cache read failed, treating as miss")
		}
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		r.log.WithError(err).Warn("Cache write failed")
	}
}

func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.WithError(err).Warn("Cache delete failed")
	}
}

func (r *RedisCache) Flush(ctx context.Context) {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.WithError(err).Error("Cache flush scan failed")
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.WithError(err).Error("Cache flush delete failed")
	}
}
