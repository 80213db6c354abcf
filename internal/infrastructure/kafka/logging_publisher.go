package kafka

import (
	"context"
	"log/slog"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
)

// LoggingPublisher implements port.EventPublisher by logging events. It
// stands in for Kafka when KAFKA_ENABLED is false.
type LoggingPublisher struct {
	logger *slog.Logger
}

// NewLoggingPublisher creates a publisher that only logs.
func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

// Publish logs one line per event.
func (p *LoggingPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages, err := encode(events)
	if err != nil {
		return err
	}
	for i, evt := range events {
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID(),
			"aggregate_id", evt.AggregateID(),
			"payload_size", len(messages[i].Value),
		)
	}
	return nil
}
