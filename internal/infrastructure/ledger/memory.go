package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

// MemoryLedger keeps rows in process. The mutex guards the slice only; a
// read followed by an append is still two separate operations.
type MemoryLedger struct {
	mu   sync.RWMutex
	name string
	rows []ticket.Row
}

func NewMemoryLedger(name string, rows ...ticket.Row) *MemoryLedger {
	if name == "" {
		name = "memory"
	}
	return &MemoryLedger{name: name, rows: append([]ticket.Row(nil), rows...)}
}

func (m *MemoryLedger) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ticket.Row{}, m.rows...), nil
}

func (m *MemoryLedger) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(row), nil
}

func (m *MemoryLedger) AppendRowAt(ctx context.Context, expectedRows int, row ticket.Row) (*ticket.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) != expectedRows {
		return nil, ticket.ErrVersionConflict
	}
	return m.appendLocked(row), nil
}

func (m *MemoryLedger) appendLocked(row ticket.Row) *ticket.AppendResult {
	m.rows = append(m.rows, row)
	return &ticket.AppendResult{UpdatedRange: fmt.Sprintf("%s!%d", m.name, len(m.rows))}
}

// Len returns the number of rows.
func (m *MemoryLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
