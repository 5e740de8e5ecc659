package interfaces

import (
	"context"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// EventSource pulls messages from the bus in delivery order
type EventSource interface {
	// Fetch blocks until the next message is available or ctx is done
	Fetch(ctx context.Context) (*model.BusMessage, error)

	// Commit marks a message as handled
	Commit(ctx context.Context, msg *model.BusMessage) error

	// Close releases the bus connection. Safe to call more than once.
	Close() error
}

// EventDeserializer decodes a schema-identified message payload into an
// event, returning the schema ID for traceability.
type EventDeserializer interface {
	Deserialize(data []byte) (*model.TemplateEvent, int, error)
}

// RenderReadyPublisher serializes an enriched event and publishes it to the
// render_ready topic, waiting for broker acknowledgment.
type RenderReadyPublisher interface {
	Publish(ctx context.Context, event *model.TemplateEvent) error
	Close() error
}
