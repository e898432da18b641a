package ports

import (
	"context"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// EventPublisher publishes user partition changes to a message broker.
type EventPublisher interface {
	PublishObservationEvent(ctx context.Context, event *domain.ObservationEvent) error
}
