package middleware

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateLimitEntry tracks request count per IP
type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

var (
	rateLimitMap   = make(map[string]*RateLimitEntry)
	rateLimitMutex sync.Mutex
)

// Logger middleware for request logging
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		log.Printf(
			"%3d | %13v | %15s | %-7s %s",
			c.Response().StatusCode(),
			duration,
			c.IP(),
			c.Method(),
			c.Path(),
		)

		return err
	}
}

// CORS middleware for cross-origin requests
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
		c.Set("Access-Control-Max-Age", "86400")

		if c.Method() == "OPTIONS" {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}

// RateLimiter middleware for rate limiting (simple implementation)
func RateLimiter(maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		rateLimitMutex.Lock()

		entry, exists := rateLimitMap[ip]
		now := time.Now()

		if !exists || now.After(entry.ResetTime) {
			rateLimitMap[ip] = &RateLimitEntry{
				Count:     1,
				ResetTime: now.Add(window),
			}
			rateLimitMutex.Unlock()
			return c.Next()
		}

		if entry.Count >= maxRequests {
			rateLimitMutex.Unlock()
			remaining := int(entry.ResetTime.Sub(now).Seconds())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Rate limit exceeded. Try again in " + strconv.Itoa(remaining) + " seconds",
			})
		}

		entry.Count++
		rateLimitMutex.Unlock()
		return c.Next()
	}
}

// Recovery middleware to recover from panics
func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic recovered: %v", r)
				c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Internal server error",
				})
			}
		}()
		return c.Next()
	}
}
