package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/redis/go-redis/v9"
)

// slidingWindow keeps one sorted-set member per accepted hit, scored by its
// time in milliseconds. Refused hits are not recorded.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, 0, tonumber(oldest[2]) + window - now}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1, 0}
`)

// RedisThrottle counts form submissions in Redis so every instance shares
// the quota
type RedisThrottle struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// NewRedisThrottle creates a throttle on an existing client
func NewRedisThrottle(client *redis.Client, keyPrefix string) *RedisThrottle {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisThrottle{client: client, keyPrefix: keyPrefix, now: time.Now}
}

// Allow records a hit for key unless limit hits already fall inside window
func (t *RedisThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (publicform.Decision, error) {
	now := t.now().UnixMilli()
	res, err := slidingWindow.Run(ctx, t.client, []string{t.keyPrefix + key},
		now, window.Milliseconds(), limit, fmt.Sprintf("%d-%s", now, uuid.NewString())).Int64Slice()
	if err != nil {
		return publicform.Decision{}, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	if len(res) != 3 {
		return publicform.Decision{}, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	return publicform.Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

var _ publicform.Throttle = (*RedisThrottle)(nil)
