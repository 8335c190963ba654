package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expo-portal/internal/logger"
	"expo-portal/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher sends portal activity events.
type Publisher interface {
	Publish(ctx context.Context, event models.PortalEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer messageWriter
	prefix string
	logger *logger.Logger
}

// NewProducer writes to <prefix>.<event> topics on brokers.
func NewProducer(brokers []string, prefix string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{Writer: writer, prefix: prefix, logger: log}
}

// Topic maps an event type to its topic, e.g. stall_booked -> expo.stall.booked.
func Topic(prefix, eventType string) string {
	switch eventType {
	case models.EventStallBooked:
		return prefix + ".stall.booked"
	case models.EventPaymentProcessed:
		return prefix + ".payment.processed"
	case models.EventVisitorRegistered:
		return prefix + ".visitor.registered"
	default:
		return prefix + ".activity"
	}
}

// Topics lists every topic the portal publishes to.
func Topics(prefix string) []string {
	return []string{
		Topic(prefix, models.EventStallBooked),
		Topic(prefix, models.EventPaymentProcessed),
		Topic(prefix, models.EventVisitorRegistered),
	}
}

// Publish streams the event to its topic, keyed by stall number or visitor id.
func (p *Producer) Publish(ctx context.Context, event models.PortalEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := Topic(p.prefix, event.Type)
	p.logger.Debug("KAFKA", fmt.Sprintf("Publishing to Kafka [%s]: %s", topic, string(msgBytes)))

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   []byte(event.Key()),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.PortalEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
