package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/mietradar/internal/adapters/http"
	"github.com/samirrijal/mietradar/internal/adapters/memory"
	natsadapter "github.com/samirrijal/mietradar/internal/adapters/nats"
	"github.com/samirrijal/mietradar/internal/adapters/postgres"
	"github.com/samirrijal/mietradar/internal/adapters/valkey"
	"github.com/samirrijal/mietradar/internal/core/ports"
	"github.com/samirrijal/mietradar/internal/core/usecases"
	"github.com/samirrijal/mietradar/internal/pkg/config"
	"github.com/samirrijal/mietradar/internal/pkg/geospatial"
	"github.com/samirrijal/mietradar/internal/pkg/logging"
	"github.com/samirrijal/mietradar/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("mietradar-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format, slog.String("service", cfg.Telemetry.ServiceName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Static inputs
	hoods, err := geospatial.LoadNeighborhoodsFile(cfg.Data.NeighborhoodsFile)
	if err != nil {
		log.Fatalf("neighborhoods: %v", err)
	}
	bulk, err := memory.LoadBulkDataset(cfg.Data.BulkDir)
	if err != nil {
		log.Fatalf("bulk dataset: %v", err)
	}

	deps := &http.Dependencies{Version: version}

	// User partition
	var store ports.ObservationRepository
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		store = postgres.NewObservationRepo(db)
		deps.DB = db
	case config.StoreValkey:
		vs, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer vs.Close()
		store = vs.WithPrefix(cfg.Valkey.Prefix)
		deps.Valkey = vs
	default:
		store = memory.NewObservationStore()
	}
	slog.Info("user partition ready", "driver", cfg.Store.Driver)

	// NATS (optional)
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}
	}

	// Use cases
	deps.Neighborhoods = usecases.NewNeighborhoodService(hoods)
	deps.Observations = usecases.NewObservationService(store, deps.Neighborhoods, publisher)
	deps.Stats = usecases.NewStatsService(bulk, store)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "MietRadar API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps, http.RouterConfig{
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "neighborhoods", deps.Neighborhoods.Len())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
