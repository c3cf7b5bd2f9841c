package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/shared/goroutine"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// DefaultTicketChannel is the Redis channel ticket events go to.
const DefaultTicketChannel = "antrian:ticket:issued"

// RedisTicketEventBus publishes and receives ticket events over Redis
// Pub/Sub.
type RedisTicketEventBus struct {
	client     *redis.Client
	channel    string
	logger     logger.Interface
	instanceID string // Unique ID for this instance to avoid self-delivery
}

// NewRedisTicketEventBus creates a new Redis-based ticket event bus.
func NewRedisTicketEventBus(client *redis.Client, channel string, log logger.Interface) *RedisTicketEventBus {
	if channel == "" {
		channel = DefaultTicketChannel
	}
	return &RedisTicketEventBus{
		client:     client,
		channel:    channel,
		logger:     log,
		instanceID: uuid.NewString(),
	}
}

// InstanceID identifies events published by this bus.
func (b *RedisTicketEventBus) InstanceID() string {
	return b.instanceID
}

// Publish implements events.EventPublisher.
func (b *RedisTicketEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	msg, err := NewTicketIssuedEvent(event, b.instanceID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish ticket event",
			"ticket_number", msg.TicketNumber,
			"error", err,
		)
		return fmt.Errorf("failed to publish ticket event: %w", err)
	}

	b.logger.Debugw("ticket event published to Redis",
		"ticket_number", msg.TicketNumber,
		"channel", b.channel,
	)
	return nil
}

// Subscribe delivers every ticket event on the channel, reconnecting with
// exponential backoff. It blocks until ctx ends and then returns ctx.Err().
func (b *RedisTicketEventBus) Subscribe(ctx context.Context, handler func(event TicketIssuedEvent)) error {
	return b.subscribeWithReconnect(ctx, func(payload string) {
		var event TicketIssuedEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			b.logger.Warnw("failed to unmarshal ticket event",
				"payload", payload,
				"error", err,
			)
			return
		}
		handler(event)
	})
}

// RelayTo republishes events from other instances to a local publisher,
// typically the in-memory dispatcher. It blocks like Subscribe.
func (b *RedisTicketEventBus) RelayTo(ctx context.Context, local events.EventPublisher) error {
	return b.Subscribe(ctx, func(event TicketIssuedEvent) {
		// Skip events from own instance; they were dispatched locally already
		if event.InstanceID == b.instanceID {
			return
		}
		if err := local.Publish(ctx, event.ToDomain()); err != nil {
			b.logger.Warnw("failed to relay ticket event",
				"ticket_number", event.TicketNumber,
				"error", err,
			)
		}
	})
}

func (b *RedisTicketEventBus) subscribeWithReconnect(ctx context.Context, handler func(payload string)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("ticket event subscription disconnected, reconnecting",
			"channel", b.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisTicketEventBus) subscribe(ctx context.Context, handler func(payload string)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}

	b.logger.Infow("subscribed to ticket event channel", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("ticket event subscriber stopped",
				"channel", b.channel,
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("ticket event channel closed", "channel", b.channel)
				return nil
			}

			goroutine.SafeGo(b.logger, "ticket-event-handler", func() {
				handler(msg.Payload)
			})
		}
	}
}
