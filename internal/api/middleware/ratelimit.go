package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/config"
	"folio-api/internal/logging"
	"folio-api/internal/ratelimit"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// RateLimit enforces a fixed-window limit per client IP using Redis
// counters. When Redis is unavailable the in-process token-bucket limiter
// takes over instead of failing open. Requests carrying a valid API key
// (resolved by APIKeyAuth) are exempt.
func RateLimit(cfg *config.Config, redisClient *utils.RedisClient, fallback *ratelimit.LocalLimiter) echo.MiddlewareFunc {
	logger := logging.GetGlobalLogger()
	window := cfg.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	limit := int64(cfg.RateLimit.RequestsPerMinute)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(ContextKeyAPIKeyID).(string); ok {
				return next(c)
			}

			clientID := c.RealIP()

			count, err := redisClient.IncrementRateWindow(c.Request().Context(), clientID, window)
			if err != nil {
				logger.Warn("Redis rate limit unavailable, using local limiter", map[string]interface{}{
					"client": clientID,
					"error":  err.Error(),
				})
				if !fallback.Allow(clientID) {
					return tooManyRequests(c)
				}
				return next(c)
			}

			if count > limit {
				return tooManyRequests(c)
			}

			return next(c)
		}
	}
}

// TrafficCounter bumps the per-day, per-route counter behind the admin
// traffic dashboard. Counting is best effort and never blocks a request.
func TrafficCounter(redisClient *utils.RedisClient) echo.MiddlewareFunc {
	logger := logging.GetGlobalLogger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route != "" {
				if err := redisClient.IncrementRouteCounter(c.Request().Context(), route); err != nil {
					logger.Debug("Failed to increment traffic counter", map[string]interface{}{
						"route": route,
						"error": err.Error(),
					})
				}
			}
			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error:     "rate_limited",
		Message:   "Too many requests, slow down",
		RequestID: RequestID(c),
		Timestamp: time.Now(),
	})
}
