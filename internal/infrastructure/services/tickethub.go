// Package services provides infrastructure services.
package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// TicketFeedEvent is the SSE payload for an issued ticket.
type TicketFeedEvent struct {
	TicketNumber string `json:"ticketNumber"`
	Timestamp    string `json:"timestamp"`
	Source       string `json:"source"`
}

// SSEConn represents an SSE connection from a display board.
type SSEConn struct {
	ID          string
	Send        chan []byte
	ConnectedAt time.Time
	closed      atomic.Bool
}

// TrySend attempts to send data to the SSE connection.
// Returns false if the channel is closed or full.
func (c *SSEConn) TrySend(data []byte) (sent bool) {
	if c.closed.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close marks the connection as closed and closes the send channel.
func (c *SSEConn) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.Send)
	}
}

// TicketHub fans issued tickets out to SSE connections. It subscribes to the
// event dispatcher as an events.EventHandler.
type TicketHub struct {
	conns   map[string]*SSEConn
	connsMu sync.RWMutex

	maxConns int
	shutdown atomic.Bool
	logger   logger.Interface
}

func NewTicketHub(maxConns int, log logger.Interface) *TicketHub {
	if maxConns <= 0 {
		maxConns = 100
	}
	return &TicketHub{
		conns:    make(map[string]*SSEConn),
		maxConns: maxConns,
		logger:   log,
	}
}

// Shutdown closes every connection. Safe to call multiple times.
func (h *TicketHub) Shutdown() {
	if !h.shutdown.CompareAndSwap(false, true) {
		return
	}

	h.connsMu.Lock()
	for _, conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[string]*SSEConn)
	h.connsMu.Unlock()
}

// RegisterConn returns nil when the hub is full or shut down.
func (h *TicketHub) RegisterConn(connID string) *SSEConn {
	if h.shutdown.Load() {
		return nil
	}

	h.connsMu.Lock()
	defer h.connsMu.Unlock()

	if len(h.conns) >= h.maxConns {
		h.logger.Warnw("SSE connection limit exceeded", "limit", h.maxConns)
		return nil
	}

	conn := &SSEConn{
		ID:          connID,
		Send:        make(chan []byte, 64),
		ConnectedAt: biztime.NowUTC(),
	}
	h.conns[connID] = conn

	h.logger.Infow("SSE connection registered", "conn_id", connID)
	return conn
}

func (h *TicketHub) UnregisterConn(connID string) {
	h.connsMu.Lock()
	conn, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	h.connsMu.Unlock()

	if ok {
		conn.Close()
		h.logger.Infow("SSE connection unregistered", "conn_id", connID)
	}
}

// ConnCount returns the number of registered connections.
func (h *TicketHub) ConnCount() int {
	h.connsMu.RLock()
	defer h.connsMu.RUnlock()
	return len(h.conns)
}

// Broadcast sends an issued ticket to every connection. Slow connections
// drop the event.
func (h *TicketHub) Broadcast(event *ticket.IssuedEvent) {
	data, err := formatSSEEvent(event.GetEventType(), TicketFeedEvent{
		TicketNumber: event.TicketNumber,
		Timestamp:    event.Timestamp,
		Source:       event.Source,
	})
	if err != nil {
		h.logger.Errorw("failed to format SSE event", "error", err)
		return
	}

	h.connsMu.RLock()
	defer h.connsMu.RUnlock()

	for _, conn := range h.conns {
		if !conn.TrySend(data) {
			h.logger.Warnw("failed to send SSE event, channel full",
				"conn_id", conn.ID,
				"ticket_number", event.TicketNumber,
			)
		}
	}
}

// Handle implements events.EventHandler.
func (h *TicketHub) Handle(event events.DomainEvent) error {
	issued, ok := event.(*ticket.IssuedEvent)
	if !ok {
		return fmt.Errorf("ticket hub cannot handle %s", event.GetEventType())
	}
	h.Broadcast(issued)
	return nil
}

// CanHandle implements events.EventHandler.
func (h *TicketHub) CanHandle(eventType string) bool {
	return eventType == ticket.EventTypeIssued
}

func formatSSEEvent(eventType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, body)), nil
}
