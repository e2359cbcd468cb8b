package port

import (
	"context"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// EventPublisher is an interface to define an event transport (nats, kafka, ...)
type EventPublisher interface {
	Publish(ctx context.Context, event domain.StatusEvent) error
	Close() error
}

// EventRelay drains aggregate events after a successful commit and hands them
// to the transport, best-effort. The caller never blocks on subscribers.
type EventRelay interface {
	Relay(ctx context.Context, events []domain.StatusEvent)
}
