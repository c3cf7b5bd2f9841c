package http

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/cache"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ledger"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/pubsub"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ratelimit"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/services"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/common"
	tickethandlers "github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/ticket"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/middleware"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
	"github.com/antrian-kiosk/antrian/internal/shared/goroutine"
	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

const (
	eventBufferSize = 100
	maxFeedConns    = 200
)

// Container holds the infrastructure, use cases and handlers of the ticket
// service and tears them down in Shutdown.
type Container struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Interface

	// Core infrastructure
	redis     *redis.Client
	ledger    *ledger.Handle
	transport *pubsub.Transport

	// Events
	dispatcher  *events.InMemoryEventDispatcher
	ticketHub   *services.TicketHub
	relayCancel context.CancelFunc
	relayMu     sync.Mutex

	// Use cases
	getLastTicketUC *usecases.GetLastTicketUseCase
	submitTicketUC  *usecases.SubmitTicketUseCase
	issueTicketUC   *usecases.IssueTicketUseCase
	nextNumberUC    *usecases.NextTicketNumberUseCase

	// Handlers
	ticketHandler *tickethandlers.TicketHandler
	feedHandler   *common.TicketFeedHandler
	healthHandler *common.HealthHandler

	// Middlewares
	rateLimiter *middleware.RateLimiter
}

// NewContainer wires everything together. Partially built resources are
// released when a step fails.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Interface) (c *Container, err error) {
	c = &Container{
		engine: gin.New(),
		cfg:    cfg,
		log:    log,
	}
	defer func() {
		if err != nil {
			c.Shutdown()
			c = nil
		}
	}()

	// Section 1: Infrastructure - Redis, Ledger, Event transport
	if err = c.initInfrastructure(ctx); err != nil {
		return c, err
	}

	// Section 2: Events - Dispatcher, TicketHub, cross-instance relay
	if err = c.initEvents(ctx); err != nil {
		return c, err
	}

	// Section 3: Tickets - UseCases, Handlers
	c.initTickets()

	// Section 4: Middlewares
	c.initMiddlewares()

	return c, nil
}

func (c *Container) needsRedis() bool {
	return c.cfg.RateLimit.Enabled ||
		c.cfg.Events.Driver == sharedConfig.EventsDriverRedis ||
		c.cfg.Ledger.Driver == sharedConfig.LedgerDriverRedis
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.needsRedis() {
		client, err := cache.NewRedisClient(ctx, c.cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redis = client
		c.log.Infow("redis connected", "addr", c.cfg.Redis.GetAddr())
	}

	handle, err := ledger.Open(ctx, ledger.Deps{
		Ledger:      c.cfg.Ledger,
		Database:    c.cfg.Database,
		RedisConfig: c.cfg.Redis,
		Redis:       c.redis,
	}, c.log.Named("ledger"))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	c.ledger = handle

	transport, err := pubsub.NewTransport(c.cfg.Events, c.redis, c.log.Named("events"))
	if err != nil {
		return fmt.Errorf("failed to create event transport: %w", err)
	}
	c.transport = transport
	return nil
}

// initEvents does not wait for the relay subscription; it reconnects in the
// background for as long as the container lives.
func (c *Container) initEvents(ctx context.Context) error {
	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, c.log.Named("dispatcher"))
	c.ticketHub = services.NewTicketHub(maxFeedConns, c.log.Named("ticket_hub"))

	if err := c.dispatcher.Subscribe(ticket.EventTypeIssued, c.ticketHub); err != nil {
		return fmt.Errorf("failed to subscribe ticket hub: %w", err)
	}
	if err := c.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	// Tickets issued by other instances reach this instance's feed through
	// the redis bus; our own events are delivered locally.
	if c.transport.Bus != nil {
		relayCtx, cancel := context.WithCancel(ctx)
		c.relayMu.Lock()
		c.relayCancel = cancel
		c.relayMu.Unlock()

		bus, log := c.transport.Bus, c.log.Named("ticket_relay")
		goroutine.SafeGo(log, "ticket-event-relay", func() {
			if err := bus.RelayTo(relayCtx, c.dispatcher); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("ticket event relay stopped", "error", err)
			}
		})
	}
	return nil
}

func (c *Container) initTickets() {
	settings := c.ledger.Settings
	policy := usecases.Policy{
		Timeout:                  c.cfg.Ledger.Timeout(),
		StrictSequence:           c.cfg.Ticket.StrictSequence,
		MaxConflictRetries:       c.cfg.Ticket.MaxConflictRetries,
		RequireSequentialNumbers: c.cfg.Ticket.RequireSequentialNumbers,
		PublishTimeout:           c.cfg.Events.PublishTimeout(),
	}
	clock := usecases.Clock(biztime.Now)
	publisher := pubsub.MultiPublisher{c.dispatcher, c.transport.Publisher}
	l := c.ledger.Ledger

	c.getLastTicketUC = usecases.NewGetLastTicketUseCase(l, settings, policy, clock, c.log.Named("get_last_ticket"))
	c.submitTicketUC = usecases.NewSubmitTicketUseCase(l, publisher, settings, policy, clock, c.log.Named("submit_ticket"))
	c.issueTicketUC = usecases.NewIssueTicketUseCase(l, publisher, settings, policy, clock, c.log.Named("issue_ticket"))
	c.nextNumberUC = usecases.NewNextTicketNumberUseCase(l, settings, policy, clock, c.log.Named("next_ticket_number"))

	c.ticketHandler = tickethandlers.NewTicketHandler(
		c.getLastTicketUC,
		c.submitTicketUC,
		c.issueTicketUC,
		c.nextNumberUC,
		c.cfg.Session,
		c.log.Named("ticket_handler"),
	)
	c.feedHandler = common.NewTicketFeedHandler(c.ticketHub, c.log.Named("ticket_feed"))
	c.healthHandler = common.NewHealthHandler(c.ledger.Driver, settings)
}

func (c *Container) initMiddlewares() {
	if !c.cfg.RateLimit.Enabled || c.redis == nil {
		return
	}
	window := time.Duration(c.cfg.RateLimit.WindowSeconds) * time.Second
	c.rateLimiter = middleware.NewRateLimiter(
		ratelimit.NewRedisRateLimiter(c.redis),
		c.cfg.RateLimit.Requests,
		window,
		c.log.Named("rate_limiter"),
	)
}

// Shutdown stops background work and closes connections in reverse order of
// creation. It is safe on a partially built container.
func (c *Container) Shutdown() {
	c.relayMu.Lock()
	if c.relayCancel != nil {
		c.relayCancel()
		c.relayCancel = nil
	}
	c.relayMu.Unlock()

	if c.ticketHub != nil {
		c.ticketHub.Shutdown()
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.Stop(); err != nil {
			c.log.Warnw("failed to stop event dispatcher", "error", err)
		}
	}

	var errs []error
	if c.transport != nil && c.transport.Close != nil {
		errs = append(errs, c.transport.Close())
	}
	if c.ledger != nil {
		errs = append(errs, c.ledger.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		c.log.Warnw("errors during shutdown", "error", err)
	}
}
