package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewClient(Config{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = c.Close() })
	return NewRateLimiter(c, cfg), mr
}

func TestAllowAuth(t *testing.T) {
	req := require.New(t)
	limiter, mr := newTestLimiter(t, RateLimitConfig{AuthLimit: 2, AuthWindow: time.Minute})
	ctx := context.Background()

	first, err := limiter.AllowAuth(ctx, "10.0.0.1")
	req.NoError(err)
	req.True(first.Allowed)
	req.Equal(1, first.Remaining)
	req.Equal(2, first.Limit)

	second, err := limiter.AllowAuth(ctx, "10.0.0.1")
	req.NoError(err)
	req.True(second.Allowed)
	req.Equal(0, second.Remaining)

	third, err := limiter.AllowAuth(ctx, "10.0.0.1")
	req.NoError(err)
	req.False(third.Allowed)

	other, err := limiter.AllowAuth(ctx, "10.0.0.2")
	req.NoError(err)
	req.True(other.Allowed)

	req.Equal(time.Minute, mr.TTL("ratelimit:10.0.0.1:auth"))
	val, err := mr.Get("ratelimit:10.0.0.1:auth")
	req.NoError(err)
	req.Equal("2", val)
}

func TestWindowExpiry(t *testing.T) {
	req := require.New(t)
	limiter, mr := newTestLimiter(t, RateLimitConfig{MessageLimit: 1, MessageWindow: 30 * time.Second})
	ctx := context.Background()

	res, err := limiter.AllowMessage(ctx, "acct")
	req.NoError(err)
	req.True(res.Allowed)

	res, err = limiter.AllowMessage(ctx, "acct")
	req.NoError(err)
	req.False(res.Allowed)
	req.Equal(30*time.Second, res.ResetIn)

	mr.FastForward(31 * time.Second)

	res, err = limiter.AllowMessage(ctx, "acct")
	req.NoError(err)
	req.True(res.Allowed)
}

func TestReset(t *testing.T) {
	req := require.New(t)
	limiter, _ := newTestLimiter(t, RateLimitConfig{MessageLimit: 1, MessageWindow: time.Minute, AuthLimit: 1, AuthWindow: time.Minute})
	ctx := context.Background()

	_, err := limiter.AllowMessage(ctx, "acct")
	req.NoError(err)
	_, err = limiter.AllowAuth(ctx, "1.2.3.4")
	req.NoError(err)

	req.NoError(limiter.ResetMessages(ctx, "acct"))
	req.NoError(limiter.ResetAuth(ctx, "1.2.3.4"))

	res, err := limiter.AllowMessage(ctx, "acct")
	req.NoError(err)
	req.True(res.Allowed)
	res, err = limiter.AllowAuth(ctx, "1.2.3.4")
	req.NoError(err)
	req.True(res.Allowed)
}

func TestUnavailableServer(t *testing.T) {
	limiter, mr := newTestLimiter(t, DefaultRateLimitConfig())
	mr.Close()

	_, err := limiter.AllowAuth(context.Background(), "10.0.0.1")
	require.Error(t, err)
}
