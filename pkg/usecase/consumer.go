package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// Consumer is the event consumption loop: it pulls messages one at a time
// in delivery order, deserializes them and hands them to the router. One
// bad message never halts the stream.
type Consumer struct {
	source       interfaces.EventSource
	deserializer interfaces.EventDeserializer
	router       *Router
}

// NewConsumer creates the consumption loop
func NewConsumer(source interfaces.EventSource, deserializer interfaces.EventDeserializer, router *Router) *Consumer {
	return &Consumer{
		source:       source,
		deserializer: deserializer,
		router:       router,
	}
}

// Run consumes until ctx is cancelled or the bus connection fails. Each
// message runs to completion before the next is fetched. Cancellation is a
// normal stop, not a processing failure.
func (c *Consumer) Run(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	for {
		msg, err := c.source.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				logger.Info("Event consumption stopped")
				return nil
			}
			return goerr.Wrap(err, "failed to fetch message from bus")
		}

		event, schemaID, err := c.deserializer.Deserialize(msg.Value)
		if err != nil {
			logger.Error("Failed to deserialize an event message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			c.commit(ctx, msg)
			continue
		}

		logger.Debug("New event message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"template_name", event.TemplateName,
		)

		if err := c.router.Route(ctx, msg, event, schemaID); err != nil {
			logger.Error("Failed to handle event message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		c.commit(ctx, msg)
	}
}

// commit marks a message handled. Commit errors are logged, not fatal: the
// message was already processed and a replay is tolerable.
func (c *Consumer) commit(ctx context.Context, msg *model.BusMessage) {
	if err := c.source.Commit(ctx, msg); err != nil {
		ctxlog.From(ctx).Warn("Failed to commit message offset",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}
}
