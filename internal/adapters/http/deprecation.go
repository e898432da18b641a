package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks a path prefix as deprecated with a sunset date.
type DeprecatedRoute struct {
	Prefix      string    // Path prefix, matched on segment boundaries
	SunsetDate  time.Time // Date when the alias will be removed
	Alternative string    // Replacement prefix (optional)
}

// LegacyCategoryRoutes lists the paths still served under the old "wg"
// category name.
func LegacyCategoryRoutes() []DeprecatedRoute {
	sunset := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	return []DeprecatedRoute{
		{Prefix: "/v1/stats/wg", SunsetDate: sunset, Alternative: "/v1/stats/sharedRoom"},
		{Prefix: "/v1/observations/wg", SunsetDate: sunset, Alternative: "/v1/observations/sharedRoom"},
		{Prefix: "/v1/check/wg", SunsetDate: sunset, Alternative: "/v1/check/sharedRoom"},
	}
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, d := range deprecated {
			if !matchPrefix(path, d.Prefix) {
				continue
			}
			// RFC 8594
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

			// RFC 8288
			if d.Alternative != "" {
				successor := d.Alternative + strings.TrimPrefix(path, d.Prefix)
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, successor))
			}
			break
		}

		return c.Next()
	}
}

// matchPrefix reports whether path equals prefix or continues it with a
// new segment ("/v1/stats/wg/01" matches "/v1/stats/wg", "/v1/stats/wgx" does not).
func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
