package middleware

import (
	"sync"
	"time"

	"fintrack/internal/errors"
	"fintrack/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// 5 req/s keeps credential stuffing off /auth/login; the burst covers
	// the flurry of list+summary+stream requests a page load fires.
	defaultRPS    = 5
	defaultBurst  = 10
	staleAfter    = 3 * time.Minute
	sweepInterval = time.Minute
)

// clientLimiter pairs a token bucket with the last time its IP was seen
type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry hands out one token bucket per client IP
type limiterRegistry struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

func newLimiterRegistry(rps, burst int) *limiterRegistry {
	return &limiterRegistry{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (lr *limiterRegistry) allow(ip string) bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	client, ok := lr.clients[ip]
	if !ok {
		client = &clientLimiter{bucket: rate.NewLimiter(lr.rps, lr.burst)}
		lr.clients[ip] = client
	}
	client.lastSeen = time.Now()

	return client.bucket.Allow()
}

// sweep drops buckets for IPs not seen within staleAfter
func (lr *limiterRegistry) sweep() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	for ip, client := range lr.clients {
		if time.Since(client.lastSeen) > staleAfter {
			delete(lr.clients, ip)
		}
	}
}

func (lr *limiterRegistry) sweepLoop() {
	for {
		time.Sleep(sweepInterval)
		lr.sweep()
	}
}

// RateLimiter limits each client IP with the default request budget
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterWithConfig(defaultRPS, defaultBurst)
}

// RateLimiterWithConfig limits each client IP to rps sustained requests per
// second with the given burst capacity. Over-budget requests are answered
// with SYSTEM_004 and never reach the handler.
func RateLimiterWithConfig(rps, burst int) echo.MiddlewareFunc {
	registry := newLimiterRegistry(rps, burst)
	go registry.sweepLoop()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !registry.allow(clientIP(c)) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}

			return next(c)
		}
	}
}

// clientIP resolves the caller's address, trusting proxy headers first
func clientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return c.RealIP()
}
