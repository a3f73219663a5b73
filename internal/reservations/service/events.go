package service

import (
	"context"
	"time"

	"aula/pkg/kafka"
	"aula/pkg/logger"
	"aula/pkg/model"
)

// EventPublisher emits reservation lifecycle events after a mutation has
// committed. Publication is best-effort: a failed publish is logged and
// never rolls back the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.ReservationEvent)
}

type kafkaEventPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaEventPublisher(producer *kafka.Producer, log *logger.Logger) EventPublisher {
	return &kafkaEventPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event *model.ReservationEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	// Keying by classroom and date keeps all events for one classroom-day
	// on a single partition, preserving their order for consumers.
	msg := kafka.NewMessage().
		WithKey(model.LockID(event.ClassroomID, event.Date)).
		WithEventType(event.Action).
		WithSource("reservations").
		WithValue(event).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish reservation event",
			"reservation_id", event.ReservationID,
			"action", event.Action,
			"error", err,
		)
	}
}

// noopEventPublisher discards events. Used when the event stream is not
// configured, and by tests.
type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) Publish(context.Context, *model.ReservationEvent) {}
