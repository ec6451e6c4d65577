package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Limiter is a shared per-key counter such as ratelimit.FixedWindow.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Limit() int
	Window() time.Duration
}

func tooManyRequests(c *fiber.Ctx, window time.Duration) error {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
		Error:     true,
		Message:   "Too many generation requests, please wait a minute",
		Code:      "RATE_LIMITED",
		Retryable: true,
	})
}

func userKey(c *fiber.Ctx) string {
	if id, err := authctx.UserID(c); err == nil {
		return "user:" + id.String()
	}
	return "ip:" + c.IP()
}

// UserRateLimit limits generation requests per authenticated user. With a shared limiter the
// budget holds across replicas; otherwise Fiber's in-memory limiter is used per process.
func UserRateLimit(shared Limiter, max int, window time.Duration) fiber.Handler {
	if shared == nil {
		return limiter.New(limiter.Config{
			Max:          max,
			Expiration:   window,
			KeyGenerator: userKey,
			LimitReached: func(c *fiber.Ctx) error {
				return tooManyRequests(c, window)
			},
		})
	}

	return func(c *fiber.Ctx) error {
		ok, err := shared.Allow(c.UserContext(), userKey(c))
		if err != nil {
			slog.Error("rate limiter unavailable", "error", err, "action", "ratelimit.allow")
		}
		if !ok {
			return tooManyRequests(c, shared.Window())
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(shared.Limit()))
		return c.Next()
	}
}

// IPRateLimit is the coarse per-IP limiter used on every API route.
func IPRateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
