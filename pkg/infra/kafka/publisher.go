package kafka

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/segmentio/kafka-go"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// EventSerializer turns an event into a schema-identified wire payload
type EventSerializer interface {
	Serialize(event *model.TemplateEvent) ([]byte, error)
}

// PublisherConfig configures the render_ready producer
type PublisherConfig struct {
	Brokers []string
	Topic   string
	TLS     *tls.Config // nil for plaintext
}

type publisher struct {
	writer     *kafka.Writer
	serializer EventSerializer
	closeOnce  sync.Once
	closeErr   error
}

// NewPublisher creates a RenderReadyPublisher. Writes wait for
// acknowledgment from all in-sync replicas.
func NewPublisher(cfg PublisherConfig, serializer EventSerializer) interfaces.RenderReadyPublisher {
	transport := &kafka.Transport{
		DialTimeout: 10 * time.Second,
		TLS:         cfg.TLS,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Transport:    transport,
	}

	return &publisher{
		writer:     writer,
		serializer: serializer,
	}
}

// Publish serializes the event and writes it, waiting for broker
// acknowledgment.
func (p *publisher) Publish(ctx context.Context, event *model.TemplateEvent) error {
	data, err := p.serializer.Serialize(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		return goerr.Wrap(err, "failed to publish render_ready message",
			goerr.V("template_name", event.TemplateName))
	}
	return nil
}

// Close shuts the writer down exactly once
func (p *publisher) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.writer.Close()
	})
	return p.closeErr
}
