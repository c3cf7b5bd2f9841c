package ledger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

const backendRedis = "redis"

// RedisLedger keeps the ledger in one Redis list. RPUSH preserves insertion
// order across every instance sharing the list.
type RedisLedger struct {
	client *redis.Client
	key    string
}

func NewRedisLedger(client *redis.Client, key string) *RedisLedger {
	return &RedisLedger{client: client, key: key}
}

func (r *RedisLedger) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	values, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, wrapErr(backendRedis, "read", "", err)
	}

	rows := make([]ticket.Row, 0, len(values))
	for _, v := range values {
		var rr storedRow
		if err := json.Unmarshal([]byte(v), &rr); err != nil {
			// Foreign entries stay in the snapshot so insertion order holds;
			// the resolver skips rows without a timestamp.
			rows = append(rows, ticket.Row{Number: v})
			continue
		}
		rows = append(rows, ticket.Row{Number: rr.Number, Timestamp: rr.Timestamp})
	}
	return rows, nil
}

func (r *RedisLedger) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	payload, err := encodeRedisRow(row)
	if err != nil {
		return nil, wrapErr(backendRedis, "append", "", err)
	}

	n, err := r.client.RPush(ctx, r.key, payload).Result()
	if err != nil {
		return nil, wrapErr(backendRedis, "append", "", err)
	}
	return &ticket.AppendResult{UpdatedRange: r.position(n)}, nil
}

// AppendRowAt pushes only if the list still has expectedRows entries,
// using WATCH so a concurrent push aborts the transaction.
func (r *RedisLedger) AppendRowAt(ctx context.Context, expectedRows int, row ticket.Row) (*ticket.AppendResult, error) {
	payload, err := encodeRedisRow(row)
	if err != nil {
		return nil, wrapErr(backendRedis, "append", "", err)
	}

	var pushed int64
	txf := func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, r.key).Result()
		if err != nil {
			return err
		}
		if n != int64(expectedRows) {
			return ticket.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, r.key, payload)
			return nil
		})
		pushed = n + 1
		return err
	}

	err = r.client.Watch(ctx, txf, r.key)
	switch {
	case err == nil:
		return &ticket.AppendResult{UpdatedRange: r.position(pushed)}, nil
	case stderrors.Is(err, ticket.ErrVersionConflict), stderrors.Is(err, redis.TxFailedErr):
		return nil, ticket.ErrVersionConflict
	default:
		return nil, wrapErr(backendRedis, "append", "", err)
	}
}

func (r *RedisLedger) position(length int64) string {
	return fmt.Sprintf("%s[%d]", r.key, length-1)
}

func encodeRedisRow(row ticket.Row) (string, error) {
	b, err := json.Marshal(storedRow{Number: row.Number, Timestamp: row.Timestamp})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
