package ratelimit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/config"
)

// Limiter implements a fixed-window per-IP request limit backed by Redis, so
// the limit holds across replicas.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
	max    int
	window time.Duration
}

// NewLimiter builds a limiter from config.
func NewLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		max:    cfg.Max,
		window: cfg.Window(),
	}
}

// Handle counts the request against the caller's window and rejects with 429
// once the limit is reached. Redis outages fail open: availability of the API
// is preferred over strict limiting.
func (l *Limiter) Handle(c *fiber.Ctx) error {
	if l.client == nil || l.max <= 0 {
		return c.Next()
	}

	key := "ratelimit:" + c.IP()
	ctx, cancel := context.WithTimeout(c.Context(), 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}

	if count > int64(l.max) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"status":  "fail",
			"message": "too many requests from this IP, please try again later",
		})
	}
	return c.Next()
}
