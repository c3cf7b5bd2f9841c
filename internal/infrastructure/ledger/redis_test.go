package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
)

func setupRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLedger(client, "antrian:ledger"), mr
}

func TestRedisLedger_AppendAndRead(t *testing.T) {
	l, _ := setupRedisLedger(t)
	ctx := context.Background()

	empty, err := l.ReadRows(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	res, err := l.AppendRow(ctx, ticket.Row{Number: "0001", Timestamp: "2025-03-14 08:00:00"})
	require.NoError(t, err)
	assert.Equal(t, "antrian:ledger[0]", res.UpdatedRange)

	res, err = l.AppendRow(ctx, ticket.Row{Number: "WALK-IN-7", Timestamp: "2025-03-14 08:01:00"})
	require.NoError(t, err)
	assert.Equal(t, "antrian:ledger[1]", res.UpdatedRange)

	rows, err := l.ReadRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ticket.Row{
		{Number: "0001", Timestamp: "2025-03-14 08:00:00"},
		{Number: "WALK-IN-7", Timestamp: "2025-03-14 08:01:00"},
	}, rows)
}

func TestRedisLedger_ForeignEntryKeepsPosition(t *testing.T) {
	l, mr := setupRedisLedger(t)
	_, err := mr.Push("antrian:ledger", "garbage")
	require.NoError(t, err)

	rows, err := l.ReadRows(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []ticket.Row{{Number: "garbage"}}, rows)
}

func TestRedisLedger_AppendRowAt(t *testing.T) {
	l, _ := setupRedisLedger(t)
	ctx := context.Background()

	_, err := l.AppendRowAt(ctx, 0, ticket.Row{Number: "0001", Timestamp: "2025-03-14 08:00:00"})
	require.NoError(t, err)

	_, err = l.AppendRowAt(ctx, 0, ticket.Row{Number: "0001", Timestamp: "2025-03-14 08:00:01"})
	assert.ErrorIs(t, err, ticket.ErrVersionConflict)

	res, err := l.AppendRowAt(ctx, 1, ticket.Row{Number: "0002", Timestamp: "2025-03-14 08:00:02"})
	require.NoError(t, err)
	assert.Equal(t, "antrian:ledger[1]", res.UpdatedRange)

	rows, err := l.ReadRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRedisLedger_ConnectionErrorIsWrapped(t *testing.T) {
	l, mr := setupRedisLedger(t)
	mr.Close()

	_, err := l.ReadRows(context.Background())

	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, backendRedis, lerr.Backend)
}
