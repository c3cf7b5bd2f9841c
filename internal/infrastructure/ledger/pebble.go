package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

const (
	backendPebble = "pebble"

	pebbleRowPrefix = "row/"
	pebbleRowUpper  = "row/~"
	pebbleCountKey  = "meta/rows"
)

// PebbleLedger is a single-node durable ledger. Rows are keyed by their
// zero-padded position so iteration order is insertion order.
type PebbleLedger struct {
	db *pebble.DB
	// mu serializes appends within the process; pebble has no multi-key
	// compare-and-set of its own.
	mu sync.Mutex
}

func OpenPebbleLedger(dir string) (*PebbleLedger, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble ledger %s: %w", dir, err)
	}
	return &PebbleLedger{db: db}, nil
}

func (p *PebbleLedger) Close() error {
	return p.db.Close()
}

func (p *PebbleLedger) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebbleRowPrefix),
		UpperBound: []byte(pebbleRowUpper),
	})
	if err != nil {
		return nil, wrapErr(backendPebble, "read", "", err)
	}
	defer iter.Close()

	rows := []ticket.Row{}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rr storedRow
		if err := json.Unmarshal(iter.Value(), &rr); err != nil {
			return nil, wrapErr(backendPebble, "read", "", fmt.Errorf("decode %s: %w", iter.Key(), err))
		}
		rows = append(rows, ticket.Row{Number: rr.Number, Timestamp: rr.Timestamp})
	}
	if err := iter.Error(); err != nil {
		return nil, wrapErr(backendPebble, "read", "", err)
	}
	return rows, nil
}

func (p *PebbleLedger) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.count()
	if err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}
	return p.appendLocked(ctx, n, row)
}

func (p *PebbleLedger) AppendRowAt(ctx context.Context, expectedRows int, row ticket.Row) (*ticket.AppendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.count()
	if err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}
	if n != uint64(expectedRows) {
		return nil, ticket.ErrVersionConflict
	}
	return p.appendLocked(ctx, n, row)
}

func (p *PebbleLedger) appendLocked(ctx context.Context, n uint64, row ticket.Row) (*ticket.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := json.Marshal(storedRow{Number: row.Number, Timestamp: row.Timestamp})
	if err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}

	key := rowKey(n)
	b := p.db.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}
	if err := b.Set([]byte(pebbleCountKey), []byte(strconv.FormatUint(n+1, 10)), nil); err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return nil, wrapErr(backendPebble, "append", "", err)
	}
	return &ticket.AppendResult{UpdatedRange: string(key)}, nil
}

func (p *PebbleLedger) count() (uint64, error) {
	val, closer, err := p.db.Get([]byte(pebbleCountKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return strconv.ParseUint(string(val), 10, 64)
}

func rowKey(n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", pebbleRowPrefix, n))
}
