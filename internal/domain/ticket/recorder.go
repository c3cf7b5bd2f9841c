package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
)

// ErrVersioningUnsupported is returned by RecordAt when the ledger cannot
// perform a versioned append.
var ErrVersioningUnsupported = errors.New("ledger does not support versioned appends")

// PersistedRecord is the canonical echo of an appended ticket.
type PersistedRecord struct {
	Number       string
	Timestamp    string
	UpdatedRange string
}

// DisplayNumber classifies the recorded number.
func (p *PersistedRecord) DisplayNumber() DisplayNumber {
	return ParseDisplayNumber(p.Number)
}

// Row returns the ledger row that was written.
func (p *PersistedRecord) Row() Row {
	return Row{Number: p.Number, Timestamp: p.Timestamp}
}

// TicketRecorder appends issued tickets. The timestamp is always taken from
// the server clock at append time.
type TicketRecorder struct {
	appender LedgerAppender
}

func NewTicketRecorder(appender LedgerAppender) *TicketRecorder {
	return &TicketRecorder{appender: appender}
}

// Record appends (number, now) as a new trailing row. On error the row must
// be presumed not written; there is no read-back.
func (r *TicketRecorder) Record(ctx context.Context, number string, now time.Time) (*PersistedRecord, error) {
	row := Row{Number: number, Timestamp: biztime.FormatLedgerTimestamp(now)}

	result, err := r.appender.AppendRow(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("append ticket %q: %w", number, err)
	}
	return persisted(row, result), nil
}

// RecordAt appends only if the ledger still holds expectedRows rows.
func (r *TicketRecorder) RecordAt(ctx context.Context, expectedRows int, number string, now time.Time) (*PersistedRecord, error) {
	versioned, ok := r.appender.(VersionedAppender)
	if !ok {
		return nil, ErrVersioningUnsupported
	}
	row := Row{Number: number, Timestamp: biztime.FormatLedgerTimestamp(now)}

	result, err := versioned.AppendRowAt(ctx, expectedRows, row)
	if err != nil {
		return nil, fmt.Errorf("append ticket %q at row %d: %w", number, expectedRows, err)
	}
	return persisted(row, result), nil
}

// SupportsVersioning reports whether RecordAt can be used.
func (r *TicketRecorder) SupportsVersioning() bool {
	_, ok := r.appender.(VersionedAppender)
	return ok
}

func persisted(row Row, result *AppendResult) *PersistedRecord {
	rec := &PersistedRecord{Number: row.Number, Timestamp: row.Timestamp}
	if result != nil {
		rec.UpdatedRange = result.UpdatedRange
	}
	return rec
}
