package ledger

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by a ledger whose settings are incomplete.
var ErrNotConfigured = errors.New("ledger is not configured")

// Error wraps a backend failure with the store-specific code.
type Error struct {
	Backend string
	Op      string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s ledger %s failed (code %s): %v", e.Backend, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s ledger %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// LedgerCode exposes Code to the application layer.
func (e *Error) LedgerCode() string {
	return e.Code
}

func wrapErr(backend, op, code string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Code: code, Err: err}
}

// storedRow is the encoding of a row in key-value backends.
type storedRow struct {
	Number    string `json:"n"`
	Timestamp string `json:"t"`
}
