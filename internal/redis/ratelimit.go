package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Key patterns:
//   - ratelimit:{account_id}:messages  per-window message sends
//   - ratelimit:{ip}:auth              per-window login/signup/password attempts

type RateLimitConfig struct {
	MessageLimit  int
	MessageWindow time.Duration
	AuthLimit     int
	AuthWindow    time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: 60 * time.Second,
		AuthLimit:     10,
		AuthWindow:    60 * time.Second,
	}
}

// RateLimiter counts attempts per key in fixed windows stored in redis.
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// limitScript increments the counter only while under the limit so rejected
// attempts do not extend the penalty.
var limitScript = goredis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		local n = redis.call('INCR', key)
		if n == 1 then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - n, ttl}
	end
	return {0, 0, ttl}
`)

func messageKey(accountID string) string {
	return fmt.Sprintf("ratelimit:%s:messages", accountID)
}

func authKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:auth", ip)
}

// AllowMessage checks whether an account may send another message.
func (r *RateLimiter) AllowMessage(ctx context.Context, accountID string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, messageKey(accountID), r.config.MessageLimit, r.config.MessageWindow)
}

// AllowAuth checks whether an IP may make another credential attempt.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, authKey(ip), r.config.AuthLimit, r.config.AuthWindow)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	result, err := limitScript.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	return &RateLimitResult{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetIn:   time.Duration(result[2]) * time.Second,
		Limit:     limit,
	}, nil
}

// ResetMessages clears the message counter for an account.
func (r *RateLimiter) ResetMessages(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, messageKey(accountID)).Err()
}

// ResetAuth clears the auth counter for an IP.
func (r *RateLimiter) ResetAuth(ctx context.Context, ip string) error {
	return r.client.Del(ctx, authKey(ip)).Err()
}
