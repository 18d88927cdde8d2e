package tokencache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL          = 10 * time.Second
	lockPollInterval = 100 * time.Millisecond
)

func tokenKey(key string) string { return "docusync:token:" + key }
func lockKey(key string) string  { return "docusync:token-lock:" + key }

// releaseScript only deletes the lock if it is still held by the caller that
// set it, so a holder never clears a lock another instance has since taken
// after its own TTL expired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a TokenCache shared across multiple connector instances, so that
// concurrent invocations against the same DocuSign account perform at most
// one JWT exchange at a time (spec §5). Grounded on the teacher's
// jobx/jobxredis client-wiring pattern.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing redis.Client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Get returns the cached token, if any instance has published one.
func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	token, err := c.rdb.Get(ctx, tokenKey(key)).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// SingleFlight takes a short-lived distributed lock (SETNX) around the
// refresh so only one instance performs the JWT exchange; other instances
// poll the published token instead of racing their own exchange.
func (c *Redis) SingleFlight(ctx context.Context, key string, refresh func(context.Context) (string, time.Duration, error)) (string, error) {
	holder := uuid.NewString()

	for {
		acquired, err := c.rdb.SetNX(ctx, lockKey(key), holder, lockTTL).Result()
		if err != nil {
			return "", err
		}
		if acquired {
			break
		}
		if token, found := c.Get(ctx, key); found {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
	defer releaseScript.Run(ctx, c.rdb, []string{lockKey(key)}, holder)

	if token, found := c.Get(ctx, key); found {
		return token, nil
	}

	token, ttl, err := refresh(ctx)
	if err != nil {
		return "", err
	}

	// A failure to publish the token is not fatal to this caller: it
	// already has a usable token, the next caller simply refreshes again.
	_ = c.rdb.Set(ctx, tokenKey(key), token, ttl).Err()
	return token, nil
}
