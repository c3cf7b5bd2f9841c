package ticket

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by a versioned append when the ledger grew
// between the caller's read and its append.
var ErrVersionConflict = errors.New("ledger changed since it was read")

// Row is one ledger entry as stored: the ticket number and the issuedAt
// string, both verbatim.
type Row struct {
	Number    string
	Timestamp string
}

// AppendResult describes where a row landed. UpdatedRange is diagnostic only.
type AppendResult struct {
	UpdatedRange string
}

// LedgerReader returns every data row in insertion order. An empty ledger
// yields an empty slice and no error.
type LedgerReader interface {
	ReadRows(ctx context.Context) ([]Row, error)
}

// LedgerAppender adds one trailing row.
type LedgerAppender interface {
	AppendRow(ctx context.Context, row Row) (*AppendResult, error)
}

// Ledger is the narrow read/append port over the shared store.
type Ledger interface {
	LedgerReader
	LedgerAppender
}

// VersionedAppender appends only if the ledger still holds exactly
// expectedRows data rows, returning ErrVersionConflict otherwise.
type VersionedAppender interface {
	AppendRowAt(ctx context.Context, expectedRows int, row Row) (*AppendResult, error)
}

// CodedError is implemented by ledger errors carrying a store-specific code
// (HTTP status of the spreadsheet API, driver error number, ...).
type CodedError interface {
	error
	LedgerCode() string
}

// LedgerCode extracts the store-specific code from err, if any.
func LedgerCode(err error) string {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.LedgerCode()
	}
	return ""
}
