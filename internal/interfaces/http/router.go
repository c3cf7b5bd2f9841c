package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/common"
	tickethandlers "github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/ticket"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/middleware"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/routes"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine        *gin.Engine
	container     *Container
	cfg           *config.Config
	log           logger.Interface
	ticketHandler *tickethandlers.TicketHandler
	feedHandler   *common.TicketFeedHandler
	healthHandler *common.HealthHandler
	rateLimiter   *middleware.RateLimiter
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(ctx context.Context, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Router{
		engine:        c.engine,
		container:     c,
		cfg:           cfg,
		log:           log,
		ticketHandler: c.ticketHandler,
		feedHandler:   c.feedHandler,
		healthHandler: c.healthHandler,
		rateLimiter:   c.rateLimiter,
	}, nil
}

// SetupRoutes configures all HTTP routes. Every ticket route is served both
// at the root and under /api.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(r.log.Named("http")))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/version", r.healthHandler.Version)

	routeCfg := &routes.TicketRouteConfig{
		TicketHandler: r.ticketHandler,
		FeedHandler:   r.feedHandler,
		RateLimiter:   r.rateLimiter,
		Timeout:       r.cfg.Ledger.Timeout(),
	}
	routes.SetupTicketRoutes(r.engine, routeCfg)
	routes.SetupTicketRoutes(r.engine.Group("/api"), routeCfg)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

// Shutdown gracefully shuts down all background services and connections.
func (r *Router) Shutdown() {
	r.log.Infow("shutting down router services")
	r.container.Shutdown()
}
