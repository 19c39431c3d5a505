package ratelimit

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const keyTenantWrites = "bullionbook:ratelimit:writes:%s"

// WriteLimiter throttles mutating API calls per tenant. A nil limiter allows
// everything.
type WriteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewWriteLimiter(bucket *TokenBucket, rate float64, burst int) *WriteLimiter {
	if bucket == nil || rate <= 0 || burst <= 0 {
		return nil
	}
	return &WriteLimiter{bucket: bucket, rate: rate, burst: burst}
}

func (l *WriteLimiter) Enabled() bool {
	return l != nil
}

func (l *WriteLimiter) Allow(ctx context.Context, tenantID snowflake.ID) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyTenantWrites, tenantID.String()), l.rate, l.burst)
}
