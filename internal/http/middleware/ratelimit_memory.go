package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const memoryLimiterIdle = 10 * time.Minute

// MemoryLimiter keeps a token bucket per key in process memory. It is used
// when Redis is not configured, so limits are per instance.
type MemoryLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*memoryBucket
	now      func() time.Time
	lastScan time.Time
}

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*memoryBucket), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictIdle(now)
	bucketKey := key + "|" + strconv.Itoa(limit) + "|" + window.String()
	bucket, ok := l.buckets[bucketKey]
	if !ok {
		bucket = &memoryBucket{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		l.buckets[bucketKey] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

func (l *MemoryLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastScan) < memoryLimiterIdle {
		return
	}
	l.lastScan = now
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) > memoryLimiterIdle {
			delete(l.buckets, key)
		}
	}
}
