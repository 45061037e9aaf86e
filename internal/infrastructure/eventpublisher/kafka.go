package eventpublisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
)

// KafkaPublisher publishes outbox events to a Kafka topic. Messages are
// keyed by aggregate ID so events for the same kiosk or movement stay on
// one partition and arrive in order.
type KafkaPublisher struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewKafkaPublisher creates a KafkaPublisher writing to the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaPublisher{
		writer:  writer,
		logger:  logger,
		metrics: m,
	}
}

// Publish writes the event envelope to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	envelope := map[string]any{
		"event_id":       event.ID,
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"occurred_at":    event.CreatedAt.UTC().Format(time.RFC3339),
		"payload":        event.Payload,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		if p.metrics != nil {
			p.metrics.PublishErrors.Inc()
		}
		p.logger.Error("failed to write event to kafka",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.EventType),
			slog.String("error", err.Error()))
		return err
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(event.EventType).Inc()
	}

	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
