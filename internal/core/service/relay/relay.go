package relay

import (
	"context"
	"log/slog"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// Relay publishes the events drained from an aggregate after a successful
// commit. Publishing is best-effort with at-least-once transport semantics; a
// publish failure is logged and never propagated back into the unit of work
// that already committed.
type Relay struct {
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewRelay creates an event relay on top of a transport publisher.
func NewRelay(publisher port.EventPublisher, logger *slog.Logger) *Relay {
	return &Relay{publisher: publisher, logger: logger}
}

// Relay publishes each event in order.
func (r *Relay) Relay(ctx context.Context, events []domain.StatusEvent) {
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Error("failed to publish domain event",
				"kind", event.Kind,
				"subject", event.SubjectID,
				"error", err,
			)
		}
	}
}
