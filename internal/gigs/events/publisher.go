package events

import (
	"context"

	"gigstage/pkg/kafka"
	kafka_config "gigstage/pkg/kafka/config"
	kafka_middleware "gigstage/pkg/kafka/middleware"
	"gigstage/pkg/logger"
)

// Event types emitted by the booking core. Downstream collaborators
// (notifications, audit viewers) consume these; the core never reads them
// back.
const (
	TypeRoleBooked        = "gig.role_booked"
	TypeRegularBooked     = "gig.booked"
	TypeGigCancelled      = "gig.cancelled"
	TypePaymentFinalized  = "gig.payment_finalized"
	TypeInterestExpressed = "gig.interest_expressed"
)

const source = "gigs-service"

// Publisher emits domain events. Emission is best-effort: a failed publish
// is logged, never rolled into the caller's result.
type Publisher interface {
	Publish(ctx context.Context, eventType, gigID string, payload any)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(topic, dlqTopic string, log *logger.Logger) (Publisher, error) {
	cfg := kafka_config.Load()
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic)
	if err != nil {
		return nil, err
	}
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
	}
	return &kafkaPublisher{producer: producer, log: log}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, gigID string, payload any) {
	msg := kafka.NewMessage().
		WithKey(gigID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event",
			"event_type", eventType,
			"gig_id", gigID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// Noop discards events; used in tests and when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}
func (Noop) Close() error                                 { return nil }
