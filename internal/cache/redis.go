package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the slice of the go-redis API the cache tier uses.
// *redis.Client satisfies it.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Redis is the distributed cache tier. Every operation tries the shared
// backend first and mirrors into a local Memory instance; on any backend
// error the call transparently serves from the local tier instead, so a
// mid-session Redis outage never causes a visible cache cold-start and
// never propagates a failure to the caller.
type Redis struct {
	client redisClient
	local  *Memory
	ttl    time.Duration
}

// NewRedis creates the Redis-backed tier over the given client, with the
// local fallback sized by capacity.
func NewRedis(client *redis.Client, ttl time.Duration, capacity int) *Redis {
	return &Redis{
		client: client,
		local:  NewMemory(ttl, capacity),
		ttl:    ttl,
	}
}

func (r *Redis) Get(ctx context.Context, query string, fp Fingerprint) (string, bool) {
	key := Key(query, fp)

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Authoritative miss from the shared tier; the local mirror may
		// still hold the entry if Redis restarted, serve that.
		return r.local.Get(ctx, query, fp)
	}
	if err != nil {
		log.Printf("cache: redis get failed, using local tier: %v", err)
		return r.local.Get(ctx, query, fp)
	}

	// Best-effort hit counter alongside the value. The counter expires on
	// the same schedule as the entry so stale counters don't accumulate.
	hitsKey := key + ":hits"
	if err := r.client.Incr(ctx, hitsKey).Err(); err != nil {
		log.Printf("cache: redis hit counter failed: %v", err)
	} else if err := r.client.Expire(ctx, hitsKey, r.ttl).Err(); err != nil {
		log.Printf("cache: redis hit counter expiry failed: %v", err)
	}

	// Keep the local mirror warm for outages.
	r.local.Set(ctx, query, val, fp)
	return val, true
}

func (r *Redis) Set(ctx context.Context, query, response string, fp Fingerprint) {
	key := Key(query, fp)

	if err := r.client.Set(ctx, key, response, r.ttl).Err(); err != nil {
		log.Printf("cache: redis set failed, local tier only: %v", err)
	}
	r.local.Set(ctx, query, response, fp)
}

// ClearExpired sweeps the local mirror. The shared tier expires entries via
// Redis key TTLs and needs no sweep.
func (r *Redis) ClearExpired(ctx context.Context) int {
	return r.local.ClearExpired(ctx)
}

// Ping checks connectivity to the shared backend.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
