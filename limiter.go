package folio

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter is a per-IP sliding-window rate limiter.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a RateLimiter that allows max requests per window
// for each address. Call Stop to end its background sweeper.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return newRateLimiter(max, window, time.Now)
}

func newRateLimiter(max int, window time.Duration, now func() time.Time) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    now,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		cutoff := l.now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.hits {
			kept := prune(hits, cutoff)
			if len(kept) == 0 {
				delete(l.hits, ip)
			} else {
				l.hits[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Stop ends the background sweeper. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Allow reports whether ip is under the limit and, if so, records the request.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.hits[ip], cutoff)
	if len(kept) >= l.max {
		l.hits[ip] = kept
		return false
	}
	l.hits[ip] = append(kept, now)
	return true
}

// RetryAfter returns how long until ip's oldest request in the window expires.
func (l *RateLimiter) RetryAfter(ip string) time.Duration {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	hits := prune(l.hits[ip], now.Add(-l.window))
	l.hits[ip] = hits
	if len(hits) < l.max || len(hits) == 0 {
		return 0
	}
	return hits[0].Add(l.window).Sub(now)
}

// Middleware rejects requests over the limit by calling onLimit instead of
// the next handler. Every request counts toward the limit.
func (l *RateLimiter) Middleware(onLimit echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if l.Allow(ip) {
				return next(c)
			}
			secs := int(math.Ceil(l.RetryAfter(ip).Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
			c.Logger().Warnf("rate limit exceeded for %s on %s", ip, c.Path())
			return onLimit(c)
		}
	}
}

// limitJSON answers with the fixed JSON body and HTTP 429.
func limitJSON(message string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusTooManyRequests, limitResponse{Error: message})
	}
}
