package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// KafkaTicketPublisher writes ticket events to a Kafka topic keyed by
// ticket number.
type KafkaTicketPublisher struct {
	writer     *kafka.Writer
	logger     logger.Interface
	instanceID string
}

// NewKafkaTicketPublisher returns an asynchronous publisher: Publish only
// queues the message and delivery failures are logged from the writer's
// completion callback.
func NewKafkaTicketPublisher(cfg config.KafkaConfig, log logger.Interface) (*KafkaTicketPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher needs brokers and a topic")
	}
	return &KafkaTicketPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
			Completion:   completionLogger(log),
		},
		logger:     log,
		instanceID: uuid.NewString(),
	}, nil
}

func completionLogger(log logger.Interface) func(messages []kafka.Message, err error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		numbers := make([]string, 0, len(messages))
		for _, m := range messages {
			numbers = append(numbers, string(m.Key))
		}
		log.Warnw("failed to deliver ticket events to kafka",
			"ticket_numbers", numbers,
			"error", err,
		)
	}
}

// Publish implements events.EventPublisher.
func (p *KafkaTicketPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	msg, err := buildKafkaMessage(event, p.instanceID)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write ticket event to kafka: %w", err)
	}
	p.logger.Debugw("ticket event queued for kafka",
		"ticket_number", string(msg.Key),
		"topic", p.writer.Topic,
	)
	return nil
}

func (p *KafkaTicketPublisher) Close() error {
	return p.writer.Close()
}

func buildKafkaMessage(event events.DomainEvent, instanceID string) (kafka.Message, error) {
	wire, err := NewTicketIssuedEvent(event, instanceID)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(wire)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal ticket event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(wire.TicketNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.GetEventType())},
		},
	}, nil
}
