package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
)

// fixedNow is 14 March 2025, 10:00 at UTC+9.
var fixedNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, biztime.LedgerZone())

func fixedClock() time.Time { return fixedNow }

type mockLedger struct {
	ReadRowsFunc  func(ctx context.Context) ([]ticket.Row, error)
	AppendRowFunc func(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error)
	readCalls     int
	appendCalls   int
	mu            sync.Mutex
}

func (m *mockLedger) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	m.mu.Lock()
	m.readCalls++
	m.mu.Unlock()
	if m.ReadRowsFunc != nil {
		return m.ReadRowsFunc(ctx)
	}
	return nil, nil
}

func (m *mockLedger) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	m.mu.Lock()
	m.appendCalls++
	m.mu.Unlock()
	if m.AppendRowFunc != nil {
		return m.AppendRowFunc(ctx, row)
	}
	return &ticket.AppendResult{}, nil
}

// barrier holds the first n arrivals until all of them are there; later
// arrivals pass straight through.
type barrier struct {
	mu        sync.Mutex
	remaining int
	release   chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{remaining: n, release: make(chan struct{})}
}

func (b *barrier) arrive() {
	b.mu.Lock()
	if b.remaining == 0 {
		b.mu.Unlock()
		return
	}
	b.remaining--
	if b.remaining == 0 {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
}

// sliceLedger is a shared in-memory ledger. When readBarrier is set readers
// wait on it after taking their snapshot, which lets tests line up
// concurrent read-then-append cycles.
type sliceLedger struct {
	mu          sync.Mutex
	rows        []ticket.Row
	readBarrier *barrier
}

func (l *sliceLedger) ReadRows(_ context.Context) ([]ticket.Row, error) {
	l.mu.Lock()
	snapshot := append([]ticket.Row(nil), l.rows...)
	l.mu.Unlock()

	if l.readBarrier != nil {
		l.readBarrier.arrive()
	}
	return snapshot, nil
}

func (l *sliceLedger) AppendRow(_ context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, row)
	return &ticket.AppendResult{UpdatedRange: fmt.Sprintf("tembagapura!A%d:B%d", len(l.rows)+1, len(l.rows)+1)}, nil
}

func (l *sliceLedger) snapshot() []ticket.Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ticket.Row(nil), l.rows...)
}

// versionedLedger adds a conditional append to sliceLedger.
type versionedLedger struct {
	sliceLedger
	conflicts int
}

func (l *versionedLedger) AppendRowAt(_ context.Context, expectedRows int, row ticket.Row) (*ticket.AppendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.rows) != expectedRows {
		l.conflicts++
		return nil, ticket.ErrVersionConflict
	}
	l.rows = append(l.rows, row)
	return &ticket.AppendResult{}, nil
}

type mockSettings struct {
	missing []string
}

func (m mockSettings) MissingSettings() []string { return m.missing }

type mockPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

// blockingPublisher reports the context state it was called with and then
// waits for that context to end.
type blockingPublisher struct {
	seen chan error
}

func (p *blockingPublisher) Publish(ctx context.Context, _ events.DomainEvent) error {
	p.seen <- ctx.Err()
	<-ctx.Done()
	return ctx.Err()
}

type codedLedgerError struct{ code string }

func (e codedLedgerError) Error() string      { return "ledger unavailable" }
func (e codedLedgerError) LedgerCode() string { return e.code }

func todayRow(number string, hour int) ticket.Row {
	ts := time.Date(2025, time.March, 14, hour, 0, 0, 0, biztime.LedgerZone())
	return ticket.Row{Number: number, Timestamp: biztime.FormatLedgerTimestamp(ts)}
}

func yesterdayRow(number string) ticket.Row {
	ts := time.Date(2025, time.March, 13, 23, 59, 59, 0, biztime.LedgerZone())
	return ticket.Row{Number: number, Timestamp: biztime.FormatLedgerTimestamp(ts)}
}
