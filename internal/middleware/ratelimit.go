package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xxxsen/ghostkube/internal/pkg/errcode"
	"github.com/xxxsen/ghostkube/internal/pkg/response"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

type rateLimiter struct {
	mu            sync.Mutex
	every         time.Duration
	burst         int
	visitors      map[string]*visitor
	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// RateLimit allows each client burst requests per route, refilled one every interval.
// A non-positive interval disables limiting.
func RateLimit(every time.Duration, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = 1
	}
	limiter := &rateLimiter{
		every:         every,
		burst:         burst,
		visitors:      make(map[string]*visitor),
		sweepInterval: time.Minute,
		now:           time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.every <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")

	now := l.now()
	l.mu.Lock()
	l.cleanupExpiredLocked(now)
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.visitors[key] = v
	}
	v.seen = now
	allowed := v.limiter.AllowN(now, 1)
	l.mu.Unlock()

	if !allowed {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
		c.Abort()
		return
	}
	c.Next()
}

// cleanupExpiredLocked drops visitors whose bucket has fully refilled.
func (l *rateLimiter) cleanupExpiredLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweepInterval {
		return
	}
	idle := l.every * time.Duration(l.burst)
	for key, v := range l.visitors {
		if now.Sub(v.seen) >= idle {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}
