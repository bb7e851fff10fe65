package middleware

import (
	"math"
	"strconv"

	"learning_server/pkg/apperr"
	"learning_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RateLimit rejects requests over the limiter's budget with 429. Authenticated
// requests are keyed by user, the rest by client IP.
func RateLimit(limiter ratelimit.Limiter, limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if uid, ok := c.Locals("user_id").(uuid.UUID); ok && uid != uuid.Nil {
			key = "user:" + uid.String()
		}

		allowed, wait := limiter.Allow(c.UserContext(), key)
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			retryAfter := int(math.Ceil(wait.Seconds()))
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return apperr.ErrRateLimited
		}
		return c.Next()
	}
}
