package ratelimit

import (
	"context"
	"math"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerExcludesSecondHolder(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewLocalLocker(fc.Now)
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "invoice:generate:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "invoice:generate:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.Acquire(ctx, "invoice:generate:2", time.Minute)
	assert.True(t, ok)

	release()
	release()
	_, ok, _ = l.Acquire(ctx, "invoice:generate:1", time.Minute)
	assert.True(t, ok)
}

func TestLocalLockerExpires(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewLocalLocker(fc.Now)

	staleRelease, ok, _ := l.Acquire(context.Background(), "k", time.Second)
	require.True(t, ok)

	fc.Advance(2 * time.Second)
	_, ok, _ = l.Acquire(context.Background(), "k", time.Minute)
	require.True(t, ok)

	// the expired holder must not drop the new lease
	staleRelease()
	_, ok, _ = l.Acquire(context.Background(), "k", time.Minute)
	assert.False(t, ok)
}

func TestLocalLockerRejectsEmptyKey(t *testing.T) {
	_, ok, err := NewLocalLocker(nil).Acquire(context.Background(), "", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNilRedisPartsAreDisabled(t *testing.T) {
	assert.Nil(t, NewLocker(nil))
	assert.Nil(t, NewTokenBucket(nil))

	limiter := NewBulkLimiter(config.Config{Invoice: config.InvoiceConfig{BulkRate: 1, BulkBurst: 1}}, nil)
	assert.False(t, limiter.Enabled())
	res, err := limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	var locker *Locker
	_, ok, err := locker.Acquire(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestBucketIdleTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketIdleTTL(0.5, 5))
	assert.Equal(t, time.Second, bucketIdleTTL(100, 1))
	assert.Equal(t, time.Second, bucketIdleTTL(0, 1))
}

func TestDecide(t *testing.T) {
	d, err := decide([]int64{1, 4, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Limit: 5, Remaining: 4}, d)

	d, err = decide([]int64{0, 0, 1500}, 5)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 1500*time.Millisecond, d.RetryAfter)

	_, err = decide([]int64{1}, 5)
	assert.Error(t, err)
}

func TestTokenBucketRejectsBadArguments(t *testing.T) {
	var nilBucket *TokenBucket
	_, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, errLimiterMisconfigured)

	b := &TokenBucket{client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})}
	for _, tc := range []struct {
		key   string
		rate  float64
		burst int
	}{
		{"", 1, 1},
		{"k", 0, 1},
		{"k", math.NaN(), 1},
		{"k", 1, 0},
	} {
		d, err := b.Allow(context.Background(), tc.key, tc.rate, tc.burst)
		assert.ErrorIs(t, err, errLimiterMisconfigured)
		assert.False(t, d.Allowed)
	}
}
