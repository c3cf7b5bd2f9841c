package usecases

import (
	"context"
	stderrors "errors"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/errors"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

const defaultMaxConflictRetries = 3

// IssueTicketUseCase computes the next number on the server and appends it.
//
// By default the read and the append are two independent ledger calls: two
// concurrent requests that read the same snapshot both append the same
// number. With StrictSequence on a ledger that supports versioned appends,
// the append is conditional on the row count observed by the read and the
// whole read-resolve-append cycle is retried on conflict.
type IssueTicketUseCase struct {
	ledger    ticket.Ledger
	resolver  *ticket.SequenceResolver
	recorder  *ticket.TicketRecorder
	publisher events.EventPublisher
	access    ledgerAccess
	logger    logger.Interface
}

func NewIssueTicketUseCase(
	ledger ticket.Ledger,
	publisher events.EventPublisher,
	settings SettingsChecker,
	policy Policy,
	clock Clock,
	logger logger.Interface,
) *IssueTicketUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if policy.MaxConflictRetries <= 0 {
		policy.MaxConflictRetries = defaultMaxConflictRetries
	}

	uc := &IssueTicketUseCase{
		ledger:    ledger,
		resolver:  ticket.NewSequenceResolver(),
		recorder:  ticket.NewTicketRecorder(ledger),
		publisher: publisher,
		access:    newLedgerAccess(settings, policy, clock),
		logger:    logger,
	}

	if policy.StrictSequence && !uc.recorder.SupportsVersioning() {
		logger.Warnw("strict sequence requested but ledger has no versioned append, falling back to best effort")
	}

	return uc
}

func (uc *IssueTicketUseCase) Execute(ctx context.Context) (*dto.TicketDTO, error) {
	if err := uc.access.checkSettings(); err != nil {
		uc.logger.Errorw("ledger settings missing", "error", err)
		return nil, err
	}

	var (
		rec *ticket.PersistedRecord
		err error
	)
	if uc.strict() {
		rec, err = uc.issueVersioned(ctx)
	} else {
		rec, err = uc.issueBestEffort(ctx)
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("ticket issued successfully",
		"ticket_number", rec.Number,
		"timestamp", rec.Timestamp,
		"updated_range", rec.UpdatedRange,
	)

	uc.access.publishIssued(ctx, uc.publisher, uc.logger, rec, ticket.SourceComputed)

	return dto.ToTicketDTO(rec), nil
}

func (uc *IssueTicketUseCase) strict() bool {
	return uc.access.policy.StrictSequence && uc.recorder.SupportsVersioning()
}

func (uc *IssueTicketUseCase) issueBestEffort(ctx context.Context) (*ticket.PersistedRecord, error) {
	rows, err := uc.access.readRows(ctx, uc.ledger)
	if err != nil {
		uc.logger.Errorw("failed to read ledger", "error", err)
		return nil, err
	}

	next := uc.resolver.ComputeNextNumber(rows, uc.access.clock())

	rec, err := uc.access.record(ctx, uc.recorder, next.String())
	if err != nil {
		uc.logger.Errorw("failed to append ticket", "ticket_number", next.String(), "error", err)
		return nil, err
	}
	return rec, nil
}

func (uc *IssueTicketUseCase) issueVersioned(ctx context.Context) (*ticket.PersistedRecord, error) {
	attempts := uc.access.policy.MaxConflictRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		rows, err := uc.access.readRows(ctx, uc.ledger)
		if err != nil {
			uc.logger.Errorw("failed to read ledger", "error", err, "attempt", attempt)
			return nil, err
		}

		next := uc.resolver.ComputeNextNumber(rows, uc.access.clock())

		rec, err := uc.recordAt(ctx, len(rows), next.String())
		if err == nil {
			return rec, nil
		}
		if !stderrors.Is(err, ticket.ErrVersionConflict) {
			uc.logger.Errorw("failed to append ticket", "ticket_number", next.String(), "error", err)
			return nil, errors.NewLedgerWriteError(err, ticket.LedgerCode(err))
		}

		uc.logger.Warnw("ledger changed during issue, retrying",
			"ticket_number", next.String(),
			"expected_rows", len(rows),
			"attempt", attempt,
		)
	}

	return nil, errors.NewConflictError(
		"Ticket number was taken by a concurrent request, please retry",
		"ledger kept changing between read and append",
	)
}

func (uc *IssueTicketUseCase) recordAt(ctx context.Context, expectedRows int, number string) (*ticket.PersistedRecord, error) {
	ctx, cancel := uc.access.bounded(ctx)
	defer cancel()
	return uc.recorder.RecordAt(ctx, expectedRows, number, uc.access.clock())
}
