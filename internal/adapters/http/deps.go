package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mietradar/internal/core/usecases"
)

// Pinger is a backing store that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Neighborhoods *usecases.NeighborhoodService
	Observations  *usecases.ObservationService
	Stats         *usecases.StatsService
	NATS          *nats.Conn
	DB            Pinger
	Valkey        Pinger
	Version       string
}
