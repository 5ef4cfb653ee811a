package ratelimit

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// fixedWindowScript performs the whole check-and-increment in one round
// trip so concurrent bursts from one client cannot outrun the ceiling. A
// denied request leaves the counter untouched.
const fixedWindowScript = `
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "count", "start")
local count = tonumber(data[1])
local start = tonumber(data[2])

if count == nil or now - start >= window then
  redis.call("HMSET", KEYS[1], "count", 1, "start", now)
  redis.call("PEXPIRE", KEYS[1], window * 2)
  return {1, 1, now}
end

if count >= max then
  return {0, count, start}
end

count = count + 1
redis.call("HSET", KEYS[1], "count", count)
return {1, count, start}
`

// RedisStore counts windows in Redis, for deployments where the limiter
// must hold across replicas.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		client: client,
		script: redis.NewScript(fixedWindowScript),
	}
}

func (s *RedisStore) Take(ctx context.Context, key string, policy Policy, now time.Time) (Result, error) {
	if s == nil || s.client == nil {
		return Result{}, errors.New("redis store not configured")
	}

	res, err := s.script.Run(
		ctx,
		s.client,
		[]string{key},
		policy.MaxRequests,
		policy.Window.Milliseconds(),
	).Slice()
	if err != nil {
		return Result{}, err
	}
	if len(res) < 3 {
		return Result{}, errors.New("unexpected rate limit script response")
	}

	allowed := toInt64(res[0]) == 1
	count := int(toInt64(res[1]))
	start := time.UnixMilli(toInt64(res[2]))

	remaining := policy.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   start.Add(policy.Window),
	}, nil
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	default:
		return 0
	}
}
