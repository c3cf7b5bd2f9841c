package ticket

import (
	"time"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
)

const (
	// EventTypeIssued is published after every successful append.
	EventTypeIssued = "ticket.issued"

	// SourceManual marks a number typed by the user.
	SourceManual = "manual"
	// SourceComputed marks a number computed by the resolver on the server.
	SourceComputed = "computed"
)

// IssuedEvent announces a ticket that has been written to the ledger.
type IssuedEvent struct {
	events.BaseEvent
	TicketNumber string `json:"ticket_number"`
	Timestamp    string `json:"timestamp"`
	UpdatedRange string `json:"updated_range,omitempty"`
	Source       string `json:"source"`
}

func NewIssuedEvent(rec *PersistedRecord, source string, occurredAt time.Time) *IssuedEvent {
	return &IssuedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: rec.Number,
			EventType:   EventTypeIssued,
			OccurredAt:  occurredAt,
			Version:     1,
		},
		TicketNumber: rec.Number,
		Timestamp:    rec.Timestamp,
		UpdatedRange: rec.UpdatedRange,
		Source:       source,
	}
}
