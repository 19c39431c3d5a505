package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLimiterAllows(t *testing.T) {
	var l *WriteLimiter
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), snowflake.ID(101))
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewWriteLimiterNeedsPositiveLimits(t *testing.T) {
	bucket := NewTokenBucket(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	assert.Nil(t, NewWriteLimiter(nil, 5, 10))
	assert.Nil(t, NewWriteLimiter(bucket, 0, 10))
	assert.Nil(t, NewWriteLimiter(bucket, 5, 0))
	assert.NotNil(t, NewWriteLimiter(bucket, 5, 10))
}

func TestTokenBucketSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	bucket := NewTokenBucket(client)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := bucket.Allow(ctx, "tenant", 1, 1)
	assert.Error(t, err)

	_, err = bucket.Allow(ctx, "", 1, 1)
	assert.Error(t, err)

	_, err = bucket.Allow(ctx, "tenant", 0, 1)
	assert.Error(t, err)
}

func TestRefillDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), refillDelay(1.5, 2))
	assert.Equal(t, 500*time.Millisecond, refillDelay(0, 2))
	assert.Equal(t, 250*time.Millisecond, refillDelay(0.5, 2))
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, bucketTTL(0, 1))
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestScriptReplyParsing(t *testing.T) {
	assert.Equal(t, int64(1), toInt(int64(1)))
	assert.Equal(t, int64(7), toInt("7"))
	assert.InDelta(t, 3.25, toFloat("3.25"), 1e-9)
	assert.InDelta(t, 2.0, toFloat(int64(2)), 1e-9)
	assert.Zero(t, toFloat(nil))
}
