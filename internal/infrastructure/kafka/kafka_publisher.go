package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	pkgkafka "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/kafka"
)

// MessagePublisher is the producer surface the event publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing events to Kafka.
// Events of one aggregate share a key and therefore a partition.
type EventPublisher struct {
	producer MessagePublisher
	topic    string
	logger   *slog.Logger
}

// NewEventPublisher creates a publisher targeting the given producer and topic.
func NewEventPublisher(producer MessagePublisher, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises and sends domain events in one batch.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages, err := encode(events)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish %d events to topic %s: %w", len(messages), p.topic, err)
	}
	p.logger.DebugContext(ctx, "published domain events",
		"topic", p.topic,
		"count", len(messages),
		"aggregate_id", events[0].AggregateID(),
	)
	return nil
}

func encode(events []event.DomainEvent) ([]pkgkafka.Message, error) {
	messages := make([]pkgkafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"event_id":       evt.EventID(),
				"aggregate_type": evt.AggregateType(),
				"content-type":   "application/json",
			},
		})
	}
	return messages, nil
}
