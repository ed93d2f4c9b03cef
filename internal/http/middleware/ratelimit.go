package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"basegraph.app/courier/common/clock"
)

type RateLimitConfig struct {
	RPS   float64
	Burst int
	// IdleTTL is how long a caller's limiter survives without requests.
	IdleTTL       time.Duration
	CleanupPeriod time.Duration
	Clock         clock.Clock
}

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per caller and evicts idle ones in the background.
type RateLimiter struct {
	mu           sync.Mutex
	m            map[string]*limiterEntry
	cfg          RateLimitConfig
	startCleanup sync.Once
	stopOnce     sync.Once
	stopCh       chan struct{}
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &RateLimiter{
		m:      make(map[string]*limiterEntry),
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

func (r *RateLimiter) get(key string) *rate.Limiter {
	r.startCleanup.Do(func() {
		go r.cleanupLoop()
	})

	now := r.cfg.Clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.m[key]; ok {
		e.lastSeen = now
		return e.l
	}
	l := rate.NewLimiter(rate.Limit(r.cfg.RPS), r.cfg.Burst)
	r.m[key] = &limiterEntry{l: l, lastSeen: now}
	return l
}

// Shutdown stops the cleanup goroutine. Safe to call more than once.
func (r *RateLimiter) Shutdown() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(r.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCh:
			return
		}
	}
}

// evictIdle drops limiters unused for longer than IdleTTL and reports how many went.
func (r *RateLimiter) evictIdle() int {
	cutoff := r.cfg.Clock.Now().Add(-r.cfg.IdleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for k, e := range r.m {
		if e.lastSeen.Before(cutoff) {
			delete(r.m, k)
			evicted++
		}
	}
	return evicted
}

// Handler applies the caller's bucket. It keys on the user set by RequireUser
// and falls back to the client IP.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := UserID(c); userID > 0 {
			key = "user:" + strconv.FormatInt(userID, 10)
		}

		if !r.get(key).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
