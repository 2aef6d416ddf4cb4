package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	used    int
	startAt time.Time
}

// NewRateLimiter allows limit requests per key every period. Call Stop to end
// its sweeping goroutine.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return newRateLimiter(limit, period, time.Now)
}

func newRateLimiter(limit int, period time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     now,
		stop:    make(chan struct{}),
	}
	go rl.sweep(period * 2)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.windows {
				if now.Sub(w.startAt) >= rl.period {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the sweeping goroutine; it is safe to call more than once
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Take consumes one request for key. It reports whether the request fits in
// the current window, how many remain and when the window resets.
func (rl *RateLimiter) Take(key string) (ok bool, remaining int, resetIn time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.windows[key]
	if !exists || now.Sub(w.startAt) >= rl.period {
		w = &window{startAt: now}
		rl.windows[key] = w
	}
	resetIn = rl.period - now.Sub(w.startAt)

	if w.used >= rl.limit {
		return false, 0, resetIn
	}
	w.used++
	return true, rl.limit - w.used, resetIn
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, "", "Too many requests. Please try again later.")
}

// AuthRateLimit limits login and registration attempts per client IP. Its
// keys are prefixed so a limiter shared with RateLimit keeps separate counts.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, "auth:", "Too many authentication attempts. Please try again later.")
}

func limitBy(limiter *RateLimiter, prefix, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, resetIn := limiter.Take(prefix + c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(resetIn.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
			return
		}
		c.Next()
	}
}
