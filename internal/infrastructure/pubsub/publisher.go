package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// MultiPublisher hands each event to every publisher and joins the errors.
type MultiPublisher []events.EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Transport is the configured outbound event transport. Bus is set only for
// the redis driver, which can also receive.
type Transport struct {
	Publisher events.EventPublisher
	Bus       *RedisTicketEventBus
	Close     func() error
}

// NewTransport builds the publisher selected by events.driver. The redis
// driver requires client.
func NewTransport(cfg config.EventsConfig, client *redis.Client, log logger.Interface) (*Transport, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", config.EventsDriverNone:
		return &Transport{Publisher: events.NopPublisher{}, Close: noop}, nil

	case config.EventsDriverRedis:
		if client == nil {
			return nil, fmt.Errorf("events driver redis needs a redis client")
		}
		bus := NewRedisTicketEventBus(client, cfg.Channel, log)
		return &Transport{Publisher: bus, Bus: bus, Close: noop}, nil

	case config.EventsDriverKafka:
		p, err := NewKafkaTicketPublisher(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		return &Transport{Publisher: p, Close: p.Close}, nil

	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
