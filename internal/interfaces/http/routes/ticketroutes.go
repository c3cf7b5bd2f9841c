package routes

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/common"
	tickethandlers "github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/ticket"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/middleware"
)

type TicketRouteConfig struct {
	TicketHandler *tickethandlers.TicketHandler
	FeedHandler   *common.TicketFeedHandler
	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter *middleware.RateLimiter
	// Timeout bounds ledger-backed requests. The event stream is exempt.
	Timeout time.Duration
}

func SetupTicketRoutes(router gin.IRouter, config *TicketRouteConfig) {
	write := []gin.HandlerFunc{middleware.Timeout(config.Timeout)}
	if config.RateLimiter != nil {
		write = append(write, config.RateLimiter.Limit())
	}
	read := []gin.HandlerFunc{middleware.Timeout(config.Timeout)}

	router.GET("/get-last-ticket", slices.Concat(read, []gin.HandlerFunc{config.TicketHandler.GetLastTicket})...)
	router.GET("/next-ticket-number", slices.Concat(read, []gin.HandlerFunc{config.TicketHandler.NextTicketNumber})...)

	router.POST("/submit-ticket", slices.Concat(write, []gin.HandlerFunc{config.TicketHandler.SubmitTicket})...)
	router.POST("/issue-ticket", slices.Concat(write, []gin.HandlerFunc{config.TicketHandler.IssueTicket})...)

	router.GET("/session", config.TicketHandler.GetSession)
	router.DELETE("/session", config.TicketHandler.ClearSession)

	router.GET("/events", config.FeedHandler.Stream)
}
