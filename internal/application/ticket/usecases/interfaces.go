package usecases

import (
	"context"
	"time"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
)

type GetLastTicketExecutor interface {
	Execute(ctx context.Context) (*dto.LastTicketDTO, error)
}

type SubmitTicketExecutor interface {
	Execute(ctx context.Context, cmd SubmitTicketCommand) (*dto.TicketDTO, error)
}

type IssueTicketExecutor interface {
	Execute(ctx context.Context) (*dto.TicketDTO, error)
}

type NextTicketNumberExecutor interface {
	Execute(ctx context.Context) (*dto.NextTicketDTO, error)
}

// SettingsChecker lists the ledger settings that are still missing. An
// empty result means the ledger may be called.
type SettingsChecker interface {
	MissingSettings() []string
}

// Clock returns the current instant in the business timezone.
type Clock func() time.Time

// Policy carries the request-scoped knobs shared by the ticket use cases.
type Policy struct {
	// Timeout bounds every ledger call. Zero means no extra bound.
	Timeout time.Duration
	// StrictSequence turns on versioned appends for computed numbers.
	StrictSequence     bool
	MaxConflictRetries int
	// RequireSequentialNumbers rejects free-text manual numbers.
	RequireSequentialNumbers bool
	// PublishTimeout bounds the ticket-issued event publish that follows a
	// successful append. Zero means DefaultPublishTimeout.
	PublishTimeout time.Duration
}

const DefaultPublishTimeout = 2 * time.Second
