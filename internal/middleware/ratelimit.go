package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per user. Buckets of users that
// stay quiet for idleTTL are evicted.
type RateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex

	requestsPerSecond float64
	burst             int
}

func NewRateLimiter(requestsPerSecond float64, burst int, idleTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:          cache.New(idleTTL, 2*idleTTL),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
	}
}

// Allow reports whether userID may send another event now.
func (rl *RateLimiter) Allow(userID int64) bool {
	return rl.limiter(userID).Allow()
}

func (rl *RateLimiter) limiter(userID int64) *rate.Limiter {
	key := strconv.FormatInt(userID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		rl.limiters.SetDefault(key, l)
		return l
	}
	l := rate.NewLimiter(rate.Limit(rl.requestsPerSecond), rl.burst)
	rl.limiters.SetDefault(key, l)
	return l
}

func (rl *RateLimiter) Len() int {
	return rl.limiters.ItemCount()
}
