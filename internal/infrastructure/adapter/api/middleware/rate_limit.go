package middleware

import (
	"net/http"
	"sync"
	"time"

	domainerr "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorCleanupInterval = time.Minute
	visitorIdleTTL         = 3 * coreport.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per bidder
type RateLimiter struct {
	visitors     map[string]*visitor
	mtx          sync.Mutex
	rate         rate.Limit
	burst        int
	timeProvider coreport.TimeProvider
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewRateLimiter creates a limiter allowing r events per second with the given burst.
// A non-positive rate disables limiting.
func NewRateLimiter(r rate.Limit, b int, timeProvider coreport.TimeProvider) *RateLimiter {
	rl := &RateLimiter{
		visitors:     make(map[string]*visitor),
		rate:         r,
		burst:        b,
		timeProvider: timeProvider,
		stop:         make(chan struct{}),
	}

	go rl.cleanupVisitors()

	return rl
}

// Stop ends the background cleanup
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle drops bidders not seen within visitorIdleTTL and returns how many remain
func (rl *RateLimiter) evictIdle() int {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for key, v := range rl.visitors {
		if rl.timeProvider.Since(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, key)
		}
	}
	return len(rl.visitors)
}

func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[key] = &visitor{limiter, rl.timeProvider.Now()}
		return limiter
	}

	v.lastSeen = rl.timeProvider.Now()
	return v.limiter
}

// Middleware limits requests per bidder, falling back to the client IP for anonymous callers
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		key := RequesterFrom(c).UserID
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !rl.getVisitor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Code:      domainerr.ErrorCode(domainerr.ErrTransientFailure),
				Kind:      string(domainerr.KindTransientFailure),
				Message:   "Too many bids. Please slow down and try again.",
				Retryable: true,
			})
			return
		}

		c.Next()
	}
}
