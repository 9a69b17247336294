package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"
)

// ErrorCodeRateLimited is the error code of throttled requests.
const ErrorCodeRateLimited = "RATE_LIMITED"

// Limiter allows limit requests per minute and client IP. A limit of zero or
// less disables throttling. Counters live in storage, in memory when nil.
func Limiter(limit int, storage fiber.Storage) fiber.Handler {
	if limit <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("authentication rate limit reached")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":  ErrorCodeRateLimited,
				"detail": "Too many attempts, try again later",
			})
		},
	})
}
