package dto

import (
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

// LastTicketDTO is the payload of GET /get-last-ticket. TicketNumber is 0
// when nothing numeric was issued today.
type LastTicketDTO struct {
	TicketNumber     int    `json:"ticketNumber"`
	Timestamp        string `json:"timestamp,omitempty"`
	NextTicketNumber string `json:"nextTicketNumber"`
}

// TicketDTO echoes a ticket that was appended to the ledger.
type TicketDTO struct {
	TicketNumber string `json:"ticketNumber"`
	Timestamp    string `json:"timestamp"`
	UpdatedRange string `json:"updatedRange,omitempty"`
}

// NextTicketDTO previews the number the server would issue now.
type NextTicketDTO struct {
	NextTicketNumber string `json:"nextTicketNumber"`
	IssuedToday      int    `json:"issuedToday"`
}

func ToTicketDTO(rec *ticket.PersistedRecord) *TicketDTO {
	if rec == nil {
		return nil
	}
	return &TicketDTO{
		TicketNumber: rec.Number,
		Timestamp:    rec.Timestamp,
		UpdatedRange: rec.UpdatedRange,
	}
}

// ToLastTicketDTO builds the read-path payload from today's last row.
func ToLastTicketDTO(last *ticket.Row, next ticket.DisplayNumber) *LastTicketDTO {
	out := &LastTicketDTO{NextTicketNumber: next.String()}
	if last == nil {
		return out
	}
	if seq, ok := ticket.ParseDisplayNumber(last.Number).Sequence(); ok {
		out.TicketNumber = int(seq)
	}
	out.Timestamp = last.Timestamp
	return out
}
