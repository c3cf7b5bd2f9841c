// Package common provides shared HTTP handler utilities.
package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/services"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

const (
	// SSEKeepaliveInterval is the interval for sending keepalive messages.
	SSEKeepaliveInterval = 30 * time.Second

	// SSEContentType is the content type for SSE responses.
	SSEContentType = "text/event-stream"
)

// TicketFeedHandler streams issued tickets to display boards.
type TicketFeedHandler struct {
	hub       *services.TicketHub
	logger    logger.Interface
	keepalive time.Duration
}

func NewTicketFeedHandler(hub *services.TicketHub, log logger.Interface) *TicketFeedHandler {
	return &TicketFeedHandler{
		hub:       hub,
		logger:    log,
		keepalive: SSEKeepaliveInterval,
	}
}

// SetupSSEResponse sets common SSE response headers.
// Note: CORS headers are handled by global CORS middleware.
func SetupSSEResponse(c *gin.Context) {
	c.Header("Content-Type", SSEContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable Nginx buffering
}

// Stream handles GET /events
func (h *TicketFeedHandler) Stream(c *gin.Context) {
	connID := uuid.NewString()
	conn := h.hub.RegisterConn(connID)
	if conn == nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connections"})
		return
	}
	defer h.hub.UnregisterConn(connID)

	SetupSSEResponse(c)
	c.Status(http.StatusOK)
	if _, err := c.Writer.WriteString(": connected\n\n"); err != nil {
		h.logger.Warnw("SSE initial write error", "conn_id", connID, "error", err)
		return
	}
	c.Writer.Flush()

	h.runEventLoop(c, conn)
}

// runEventLoop blocks until the client disconnects or a write fails.
func (h *TicketFeedHandler) runEventLoop(c *gin.Context, conn *services.SSEConn) {
	keepAliveTicker := time.NewTicker(h.keepalive)
	defer keepAliveTicker.Stop()

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			h.logger.Infow("ticket feed connection closed by client", "conn_id", conn.ID)
			return

		case data, ok := <-conn.Send:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(data); err != nil {
				h.logger.Warnw("ticket feed write error", "conn_id", conn.ID, "error", err)
				return
			}
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				h.logger.Warnw("ticket feed keepalive error", "conn_id", conn.ID, "error", err)
				return
			}
			c.Writer.Flush()
		}
	}
}
