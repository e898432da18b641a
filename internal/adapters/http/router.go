package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mietradar/internal/pkg/metrics"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	RateLimit      int
	RequestTimeout time.Duration
}

func (rc RouterConfig) withDefaults() RouterConfig {
	if rc.RateLimit <= 0 {
		rc.RateLimit = 120
	}
	if rc.RequestTimeout <= 0 {
		rc.RequestTimeout = 15 * time.Second
	}
	return rc
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfgs ...RouterConfig) {
	var rc RouterConfig
	if len(cfgs) > 0 {
		rc = cfgs[0]
	}
	rc = rc.withDefaults()

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        rc.RateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Legacy category names
	app.Use(DeprecationMiddleware(LegacyCategoryRoutes()))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, rc.RequestTimeout)
	}

	v1 := app.Group("/v1")
	v1.Get("/neighborhoods", withTimeout(ListNeighborhoodsHandler(deps)))
	v1.Get("/neighborhoods/:id/center", withTimeout(NeighborhoodCenterHandler(deps)))
	v1.Get("/resolve", withTimeout(ResolveHandler(deps)))

	v1.Get("/stats/:category", withTimeout(ListStatsHandler(deps)))
	v1.Get("/stats/:category/:id", withTimeout(NeighborhoodStatsHandler(deps)))
	v1.Get("/stats/:category/:id/distribution", withTimeout(DistributionHandler(deps)))

	// "latest" must be registered before the :category routes.
	v1.Get("/observations/latest", withTimeout(LatestObservationHandler(deps)))
	v1.Get("/observations/:category", withTimeout(ListObservationsHandler(deps)))
	v1.Post("/observations/:category", withTimeout(AppendObservationHandler(deps)))
	v1.Delete("/observations/:category", withTimeout(ClearObservationsHandler(deps)))
	v1.Put("/observations/:category/:index", withTimeout(ReplaceObservationHandler(deps)))
	v1.Delete("/observations/:category/:index", withTimeout(RemoveObservationHandler(deps)))

	v1.Post("/check/:category", withTimeout(CheckRentHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
