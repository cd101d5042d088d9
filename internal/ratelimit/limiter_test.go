package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectpulse/pulse-server/internal/monitoring"
)

func TestRateLimiterFallbackMode(t *testing.T) {
	// No Redis configured, so every check goes through the token bucket
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:      3,
		ComputeLimitPerMin: 2,
		BurstMultiplier:    2,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// Burst capacity is limit * multiplier (min 5), so 6 requests pass
	allowedCount := 0
	for i := 0; i < 10; i++ {
		result, err := limiter.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		if result.Allowed {
			allowedCount++
		}
		assert.Equal(t, 3, result.Limit)
	}
	assert.Equal(t, 6, allowedCount)
}

func TestRateLimiterBlockedResult(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := DefaultConfig()
	config.ComputeLimitPerMin = 1
	config.BurstMultiplier = 1
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// Minimum burst is 5, drain it
	for i := 0; i < 5; i++ {
		result, err := limiter.AllowCompute(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result, err := limiter.AllowCompute(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter.Seconds(), 0.0)
}

func TestRateLimiterSeparateKeys(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:      2,
		ComputeLimitPerMin: 2,
		BurstMultiplier:    1,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// Exhaust one IP, a different IP still has budget
	for i := 0; i < 5; i++ {
		_, err := limiter.AllowIP(ctx, "10.0.0.3")
		require.NoError(t, err)
	}
	blocked, err := limiter.AllowIP(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	fresh, err := limiter.AllowIP(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, fresh.Allowed)
}

func TestRateLimiterStats(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	limiter := NewRateLimiter(redisClient, DefaultConfig(), monitoring.NewMetrics())

	_, err := limiter.AllowIP(context.Background(), "10.0.0.5")
	require.NoError(t, err)

	stats := limiter.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}
