package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisclient "github.com/petcare/rfid-gateway/internal/redis"
)

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('PEXPIRE', key, window + 10000)

local resetAt = now + window
return {1, resetAt}
`)

// RateLimiter is a sliding-window limiter shared by all gateway instances.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLimit records one event for key and reports whether it is within the
// limit. Redis failures allow the event: a reader must keep working when the
// limiter is unavailable.
func (rl *RateLimiter) CheckLimit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now().UnixMilli()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		window.Milliseconds(),
		limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, allowing event")
		return true, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, allowing event")
		return true, time.Now().Add(window)
	}

	return result[0] == 1, time.UnixMilli(result[1])
}

// ReaderLimiter caps the number of reads a single reader may submit per window.
type ReaderLimiter struct {
	limiter *RateLimiter
	limit   int
	window  time.Duration
}

func NewReaderLimiter(limiter *RateLimiter, limit int, window time.Duration) *ReaderLimiter {
	return &ReaderLimiter{limiter: limiter, limit: limit, window: window}
}

// Allow reports whether readerID is within its budget. A non-positive limit
// disables the check.
func (l *ReaderLimiter) Allow(ctx context.Context, readerID string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	allowed, _ := l.limiter.CheckLimit(ctx, redisclient.ReadLimitKey(readerID), l.limit, l.window)
	return allowed
}
