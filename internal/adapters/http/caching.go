package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}

		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// Geometry is fixed for the process lifetime.
		case strings.HasPrefix(path, "/v1/neighborhoods"), path == "/v1/resolve":
			ttl = "public, max-age=3600"

		// Stats move with every user observation; revalidate through the ETag.
		case strings.HasPrefix(path, "/v1/stats/"):
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/observations"):
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
