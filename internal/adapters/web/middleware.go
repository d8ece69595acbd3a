package web

import (
	"sync"
	"time"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RateLimiter tracks scrape requests per IP over a sliding window.
type RateLimiter struct {
	scrapes map[string][]time.Time
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing limit scrapes per window per IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		scrapes: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records a scrape for ip and reports whether it is within the limit.
// Rejected attempts are not recorded.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := rl.recent(rl.scrapes[ip], now)
	if len(recent) >= rl.limit {
		rl.scrapes[ip] = recent
		return false
	}
	rl.scrapes[ip] = append(recent, now)
	return true
}

// recent returns the timestamps still inside the window.
func (rl *RateLimiter) recent(timestamps []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	kept := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			log.GlobalWarnCtx(c.UserContext(), "scrape rate limited", "ip", c.IP())
			return writeError(c, domain.ErrRateLimited)
		}
		return c.Next()
	}
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanup periodically removes old entries from the rate limiter.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		now := rl.now()
		for ip, timestamps := range rl.scrapes {
			if recent := rl.recent(timestamps, now); len(recent) == 0 {
				delete(rl.scrapes, ip)
			} else {
				rl.scrapes[ip] = recent
			}
		}
		rl.mu.Unlock()
	}
}

// RequestIDConfig returns the configuration for Fiber's requestid middleware.
// Uses X-Request-ID header, generates UUID if not present.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     "X-Request-ID",
		Generator:  uuid.NewString,
		ContextKey: "requestid",
	}
}

// RequestIDToContextMiddleware bridges Fiber's requestid to pkg/log context.
// Must be used AFTER requestid.New() middleware.
func RequestIDToContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// RequestLoggerMiddleware logs one structured line per request, at a level
// chosen by status. Successful health checks log at debug.
// Must be used AFTER RequestIDToContextMiddleware.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		ctx := c.UserContext()
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
			"bytes", len(c.Response().Body()),
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case c.Path() == healthPath && status < 400:
			log.GlobalDebugCtx(ctx, "request completed", fields...)
		case status >= 500:
			log.GlobalErrorCtx(ctx, "request completed", fields...)
		case status >= 400:
			log.GlobalWarnCtx(ctx, "request completed", fields...)
		default:
			log.GlobalInfoCtx(ctx, "request completed", fields...)
		}

		return err
	}
}
