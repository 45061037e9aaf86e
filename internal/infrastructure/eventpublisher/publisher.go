package eventpublisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// Publisher delivers one outbox event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// EventPublisher drains the outbox table: it polls for unpublished events,
// hands them to a Publisher in creation order, and marks delivered rows so
// they are not sent again. Rows are only marked after a successful publish,
// so delivery is at-least-once and consumers must dedupe on event ID.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     *slog.Logger
	batchSize  int
	interval   time.Duration
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     *slog.Logger
	BatchSize  int           // events fetched per poll
	Interval   time.Duration // poll interval
}

// NewEventPublisher creates an outbox drainer from cfg, filling in defaults
// for anything unset.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
	}
}

// Start polls until ctx is cancelled. The first drain happens immediately so
// a restart does not sit idle for a full interval with a backlog waiting.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info("outbox publisher started",
		slog.Int("batch_size", ep.batchSize),
		slog.Duration("interval", ep.interval))

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if err := ep.drain(ctx); err != nil {
		ep.logger.Error("outbox drain failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info("outbox publisher stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.drain(ctx); err != nil {
				ep.logger.Error("outbox drain failed", slog.String("error", err.Error()))
			}
		}
	}
}

// drain publishes one batch. A failed event is left unpublished for the next
// poll; the rest of the batch still goes out.
func (ep *EventPublisher) drain(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug("draining outbox", slog.Int("count", len(events)))

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error("failed to publish event",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.EventType),
				slog.String("error", err.Error()))
			continue
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			// The event went out but is still flagged unpublished, so the
			// next poll will send it again. At-least-once, as documented.
			ep.logger.Error("failed to mark event published",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
			continue
		}

		ep.logger.Info("event published",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID))
	}

	return nil
}

// LogPublisher writes events to the log instead of a broker. Used when Kafka
// is disabled, typically in development.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event envelope.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info("outbox event",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_type", event.AggregateType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("payload", string(payload)))

	return nil
}
