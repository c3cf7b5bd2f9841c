package ticket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppender struct {
	rows []Row
	err  error
}

func (f *fakeAppender) AppendRow(_ context.Context, row Row) (*AppendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rows = append(f.rows, row)
	return &AppendResult{UpdatedRange: "tembagapura!A2:B2"}, nil
}

type fakeVersionedAppender struct {
	fakeAppender
}

func (f *fakeVersionedAppender) AppendRowAt(ctx context.Context, expectedRows int, row Row) (*AppendResult, error) {
	if len(f.rows) != expectedRows {
		return nil, ErrVersionConflict
	}
	return f.AppendRow(ctx, row)
}

type codedErr struct{ code string }

func (e codedErr) Error() string      { return "upstream failure " + e.code }
func (e codedErr) LedgerCode() string { return e.code }

func TestTicketRecorder_Record(t *testing.T) {
	appender := &fakeAppender{}
	recorder := NewTicketRecorder(appender)
	now := time.Date(2025, 3, 14, 0, 30, 0, 0, time.UTC)

	rec, err := recorder.Record(context.Background(), "0007", now)

	require.NoError(t, err)
	assert.Equal(t, "0007", rec.Number)
	assert.Equal(t, "2025-03-14 09:30:00", rec.Timestamp)
	assert.Equal(t, "tembagapura!A2:B2", rec.UpdatedRange)
	assert.Equal(t, []Row{{Number: "0007", Timestamp: "2025-03-14 09:30:00"}}, appender.rows)
	assert.True(t, rec.DisplayNumber().IsSequential())
	assert.Equal(t, appender.rows[0], rec.Row())
}

func TestTicketRecorder_Record_ManualVerbatim(t *testing.T) {
	appender := &fakeAppender{}
	recorder := NewTicketRecorder(appender)

	rec, err := recorder.Record(context.Background(), "WALK-IN-7", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "WALK-IN-7", rec.Number)
	assert.Equal(t, "WALK-IN-7", appender.rows[0].Number)
	assert.False(t, rec.DisplayNumber().IsSequential())
}

func TestTicketRecorder_Record_Failure(t *testing.T) {
	appender := &fakeAppender{err: codedErr{code: "503"}}
	recorder := NewTicketRecorder(appender)

	rec, err := recorder.Record(context.Background(), "0001", time.Now())

	assert.Nil(t, rec)
	require.Error(t, err)
	assert.Equal(t, "503", LedgerCode(err))
	assert.Empty(t, appender.rows)
}

func TestTicketRecorder_RecordAt(t *testing.T) {
	appender := &fakeVersionedAppender{}
	recorder := NewTicketRecorder(appender)
	require.True(t, recorder.SupportsVersioning())

	_, err := recorder.RecordAt(context.Background(), 0, "0001", time.Now())
	require.NoError(t, err)

	_, err = recorder.RecordAt(context.Background(), 0, "0001", time.Now())
	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.Len(t, appender.rows, 1)
}

func TestTicketRecorder_RecordAt_Unsupported(t *testing.T) {
	recorder := NewTicketRecorder(&fakeAppender{})

	assert.False(t, recorder.SupportsVersioning())
	_, err := recorder.RecordAt(context.Background(), 0, "0001", time.Now())
	assert.ErrorIs(t, err, ErrVersioningUnsupported)
}

func TestLedgerCode_Plain(t *testing.T) {
	assert.Equal(t, "", LedgerCode(errors.New("boom")))
}
