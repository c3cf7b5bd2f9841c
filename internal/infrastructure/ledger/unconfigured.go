package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

// unconfiguredLedger stands in for a backend whose settings are missing so
// the server can still start and answer with a configuration error.
type unconfiguredLedger struct {
	missing []string
}

func (u *unconfiguredLedger) err() error {
	return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(u.missing, ", "))
}

func (u *unconfiguredLedger) ReadRows(context.Context) ([]ticket.Row, error) {
	return nil, u.err()
}

func (u *unconfiguredLedger) AppendRow(context.Context, ticket.Row) (*ticket.AppendResult, error) {
	return nil, u.err()
}
