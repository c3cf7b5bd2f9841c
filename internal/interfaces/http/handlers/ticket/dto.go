package ticket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
)

// TicketNumberInput accepts the number as a JSON string or a JSON number;
// kiosk pages have sent both. A numeric zero counts as absent, the string
// "0" does not.
type TicketNumberInput string

func (t *TicketNumberInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TicketNumberInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ticketNumber must be a string or a number")
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*t = ""
		return nil
	}
	*t = TicketNumberInput(n.String())
	return nil
}

type SubmitTicketRequest struct {
	TicketNumber TicketNumberInput `json:"ticketNumber" validate:"notblank"`
}

func (r *SubmitTicketRequest) ToCommand() usecases.SubmitTicketCommand {
	return usecases.SubmitTicketCommand{TicketNumber: string(r.TicketNumber)}
}

// SessionResponse reports the ticket remembered by the session cookie.
type SessionResponse struct {
	Active       bool   `json:"active"`
	TicketNumber string `json:"ticketNumber,omitempty"`
}
