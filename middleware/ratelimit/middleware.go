package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tech-arch1tect/secretsanta/config"
)

// Middleware enforces a fixed-window per-IP limit. It is applied to
// the unauthenticated surface where credential guessing and handshake
// replay attempts would land.
func Middleware(cfg *config.RateLimitConfig, store Store) echo.MiddlewareFunc {
	if store == nil {
		store = NewMemoryStore()
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = 10
	}
	period := cfg.Period
	if period <= 0 {
		period = time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}

			count, reset := store.Increment(keyFor(c), time.Now().Add(period))

			remaining := rate - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rate))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if count > rate {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
			}
			return next(c)
		}
	}
}

func keyFor(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" {
		realIP = "fallback"
	}
	return "rate_limit:" + realIP
}
