package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// EventEnvelope is the wire format for committed domain events.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	Kind       string          `json:"kind"`
	StreamID   string          `json:"stream_id"`
	Version    int64           `json:"version"`
	ActorID    string          `json:"actor_id"`
	OccurredOn time.Time       `json:"occurred_on"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher publishes committed domain events to Kafka. Events for the
// same stream are keyed by stream id so consumers observe them in order.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a publisher backed by the given producer.
func NewEventPublisher(producer *Producer, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, logger: logger}
}

// Publish enqueues the events on the async producer. Delivery failures are
// reported by the producer's error loop, not by this method.
func (p *EventPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.Kind(), err)
		}

		envelope := EventEnvelope{
			EventID:    event.EventID().String(),
			Kind:       event.Kind(),
			StreamID:   event.StreamID(),
			Version:    event.EventVersion(),
			ActorID:    event.ActorID(),
			OccurredOn: event.OccurredOn(),
			Payload:    payload,
		}
		value, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshal envelope %s: %w", event.Kind(), err)
		}

		msg := &sarama.ProducerMessage{
			Topic: p.producer.TopicName(event.Kind()),
			Key:   sarama.StringEncoder(event.StreamID()),
			Value: sarama.ByteEncoder(value),
		}

		select {
		case p.producer.Input() <- msg:
			p.logger.Debug("Event enqueued",
				zap.String("kind", event.Kind()),
				zap.String("stream_id", event.StreamID()),
				zap.Int64("version", event.EventVersion()),
			)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
