package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/segmentio/kafka-go"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// SourceConfig configures the consumer group reader
type SourceConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	TLS     *tls.Config // nil for plaintext
}

type source struct {
	reader    *kafka.Reader
	mu        sync.Mutex
	inflight  map[string]kafka.Message
	closeOnce sync.Once
	closeErr  error
}

// NewSource creates an EventSource reading the subscription topics as one
// consumer group. Offsets are committed explicitly after each message is
// handled.
func NewSource(cfg SourceConfig) interfaces.EventSource {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
		TLS:       cfg.TLS,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		Dialer:      dialer,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return &source{
		reader:   reader,
		inflight: map[string]kafka.Message{},
	}
}

func busKey(bm *model.BusMessage) string {
	return fmt.Sprintf("%s/%d/%d", bm.Topic, bm.Partition, bm.Offset)
}

// Fetch blocks for the next message without committing its offset
func (s *source) Fetch(ctx context.Context) (*model.BusMessage, error) {
	msg, err := s.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	bm := &model.BusMessage{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}

	s.mu.Lock()
	s.inflight[busKey(bm)] = msg
	s.mu.Unlock()

	return bm, nil
}

// Commit marks a previously fetched message as handled
func (s *source) Commit(ctx context.Context, bm *model.BusMessage) error {
	s.mu.Lock()
	msg, ok := s.inflight[busKey(bm)]
	if ok {
		delete(s.inflight, busKey(bm))
	}
	s.mu.Unlock()

	if !ok {
		return goerr.New("commit for unknown message",
			goerr.V("topic", bm.Topic),
			goerr.V("partition", bm.Partition),
			goerr.V("offset", bm.Offset),
		)
	}

	if err := s.reader.CommitMessages(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to commit offset",
			goerr.V("topic", bm.Topic),
			goerr.V("offset", bm.Offset),
		)
	}
	return nil
}

// Close shuts the reader down exactly once
func (s *source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.reader.Close()
	})
	return s.closeErr
}
