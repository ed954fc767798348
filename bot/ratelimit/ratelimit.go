// Package ratelimit caps how many grievances a user may file per day,
// backed by a Redis counter with a rolling 24h window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

const window = 24 * time.Hour

// Limiter counts registrations per user in Redis. A nil Limiter allows
// everything, so deployments without Redis just skip the cap.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
}

func NewLimiter(rdb *redis.Client, prefix string, limit int) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: limit}
}

// Allow increments the user's daily counter and reports whether they are
// still under the limit. Redis failures fail open: losing the cap is
// better than losing the report.
func (l *Limiter) Allow(ctx context.Context, userID int64) bool {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return true
	}

	key := fmt.Sprintf("%s:%d", l.prefix, userID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warnf("Rate limiter unavailable, allowing user %d: %v", userID, err)
		return true
	}

	// TTL starts with the first report of the window.
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			log.Warnf("Failed to set rate limit TTL for user %d: %v", userID, err)
		}
	}

	return count <= int64(l.limit)
}
