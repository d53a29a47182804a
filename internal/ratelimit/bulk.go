package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/storefront/internal/config"
)

const keyInvoiceBulk = "invoice:bulk:%s"

// BulkLimiter throttles bulk invoice operations per actor. A nil limiter
// allows everything.
type BulkLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewBulkLimiter(cfg config.Config, bucket *TokenBucket) *BulkLimiter {
	if bucket == nil || cfg.Invoice.BulkRate <= 0 || cfg.Invoice.BulkBurst <= 0 {
		return nil
	}
	return &BulkLimiter{
		bucket: bucket,
		rate:   cfg.Invoice.BulkRate,
		burst:  cfg.Invoice.BulkBurst,
	}
}

func (l *BulkLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *BulkLimiter) Allow(ctx context.Context, actor string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyInvoiceBulk, actor), l.rate, l.burst)
}
