package pubsub

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

// TicketIssuedEvent is the wire form of ticket.IssuedEvent shared by every
// transport.
type TicketIssuedEvent struct {
	ID           string `json:"id"`
	TicketNumber string `json:"ticket_number"`
	Timestamp    string `json:"timestamp"`
	UpdatedRange string `json:"updated_range,omitempty"`
	Source       string `json:"source"`
	OccurredAt   int64  `json:"occurred_at"`
	InstanceID   string `json:"instance_id,omitempty"` // Source instance ID to avoid self-delivery
}

// NewTicketIssuedEvent converts a domain event for publishing.
func NewTicketIssuedEvent(event events.DomainEvent, instanceID string) (TicketIssuedEvent, error) {
	issued, ok := event.(*ticket.IssuedEvent)
	if !ok {
		return TicketIssuedEvent{}, fmt.Errorf("unsupported event type %q", event.GetEventType())
	}
	return TicketIssuedEvent{
		ID:           uuid.NewString(),
		TicketNumber: issued.TicketNumber,
		Timestamp:    issued.Timestamp,
		UpdatedRange: issued.UpdatedRange,
		Source:       issued.Source,
		OccurredAt:   issued.OccurredAt.Unix(),
		InstanceID:   instanceID,
	}, nil
}

// ToDomain rebuilds the domain event on the receiving side.
func (e TicketIssuedEvent) ToDomain() *ticket.IssuedEvent {
	return ticket.NewIssuedEvent(&ticket.PersistedRecord{
		Number:       e.TicketNumber,
		Timestamp:    e.Timestamp,
		UpdatedRange: e.UpdatedRange,
	}, e.Source, time.Unix(e.OccurredAt, 0))
}
