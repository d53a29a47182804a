package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// bulkBucketScript refills the bucket from the server clock, takes one
// token when available and reports how long the caller must wait
// otherwise. Replies {allowed, whole tokens left, wait in ms}.
var bulkBucketScript = redis.NewScript(`
local perMs = tonumber(ARGV[1]) / 1000
local capacity = tonumber(ARGV[2])
local idleMs = tonumber(ARGV[3])

local clock = redis.call("TIME")
local nowMs = clock[1] * 1000 + math.floor(clock[2] / 1000)

local level = capacity
local saved = redis.call("HMGET", KEYS[1], "level", "at")
if saved[1] then
  local elapsed = math.max(0, nowMs - tonumber(saved[2]))
  level = math.min(capacity, tonumber(saved[1]) + elapsed * perMs)
end

local granted = 0
local waitMs = 0
if level >= 1 then
  granted = 1
  level = level - 1
else
  waitMs = math.ceil((1 - level) / perMs)
end

redis.call("HSET", KEYS[1], "level", tostring(level), "at", nowMs)
redis.call("PEXPIRE", KEYS[1], idleMs)
return {granted, math.floor(level), waitMs}
`)

var errLimiterMisconfigured = errors.New("rate limiter misconfigured")

// TokenBucket is a Redis-backed token bucket shared by all nodes.
type TokenBucket struct {
	client *redis.Client
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client}
}

// Allow takes one token from the bucket stored under key. rate is tokens per
// second and burst the bucket capacity.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (Decision, error) {
	denied := Decision{Limit: burst}
	switch {
	case t == nil || t.client == nil:
		return denied, fmt.Errorf("%w: no redis client", errLimiterMisconfigured)
	case key == "":
		return denied, fmt.Errorf("%w: empty key", errLimiterMisconfigured)
	case rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0):
		return denied, fmt.Errorf("%w: rate %v", errLimiterMisconfigured, rate)
	case burst <= 0:
		return denied, fmt.Errorf("%w: burst %d", errLimiterMisconfigured, burst)
	}

	idle := bucketIdleTTL(rate, burst)
	reply, err := bulkBucketScript.Run(ctx, t.client, []string{key}, rate, burst, idle.Milliseconds()).Int64Slice()
	if err != nil {
		return denied, err
	}
	return decide(reply, burst)
}

func decide(reply []int64, burst int) (Decision, error) {
	if len(reply) != 3 {
		return Decision{Limit: burst}, fmt.Errorf("token bucket: unexpected reply of %d values", len(reply))
	}
	return Decision{
		Allowed:    reply[0] == 1,
		Limit:      burst,
		Remaining:  int(reply[1]),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// bucketIdleTTL keeps an untouched bucket around for twice the time it needs
// to refill completely, never less than a second.
func bucketIdleTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	full := time.Duration(float64(burst) / rate * float64(time.Second))
	return max(time.Second, (2 * full).Round(time.Second))
}
