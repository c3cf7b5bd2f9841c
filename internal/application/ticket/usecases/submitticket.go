package usecases

import (
	"context"
	"strings"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/errors"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

type SubmitTicketCommand struct {
	TicketNumber string
}

// SubmitTicketUseCase appends a caller-supplied number. Any non-empty string
// is accepted unless RequireSequentialNumbers is set; duplicates are never
// checked.
type SubmitTicketUseCase struct {
	recorder  *ticket.TicketRecorder
	publisher events.EventPublisher
	access    ledgerAccess
	logger    logger.Interface
}

func NewSubmitTicketUseCase(
	appender ticket.LedgerAppender,
	publisher events.EventPublisher,
	settings SettingsChecker,
	policy Policy,
	clock Clock,
	logger logger.Interface,
) *SubmitTicketUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SubmitTicketUseCase{
		recorder:  ticket.NewTicketRecorder(appender),
		publisher: publisher,
		access:    newLedgerAccess(settings, policy, clock),
		logger:    logger,
	}
}

func (uc *SubmitTicketUseCase) Execute(ctx context.Context, cmd SubmitTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing submit ticket use case", "ticket_number", cmd.TicketNumber)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Warnw("invalid submit ticket command", "error", err)
		return nil, err
	}

	if err := uc.access.checkSettings(); err != nil {
		uc.logger.Errorw("ledger settings missing", "error", err)
		return nil, err
	}

	rec, err := uc.access.record(ctx, uc.recorder, cmd.TicketNumber)
	if err != nil {
		uc.logger.Errorw("failed to append ticket", "ticket_number", cmd.TicketNumber, "error", err)
		return nil, err
	}

	uc.logger.Infow("ticket submitted successfully",
		"ticket_number", rec.Number,
		"timestamp", rec.Timestamp,
		"updated_range", rec.UpdatedRange,
	)

	uc.access.publishIssued(ctx, uc.publisher, uc.logger, rec, ticket.SourceManual)

	return dto.ToTicketDTO(rec), nil
}

func (uc *SubmitTicketUseCase) validateCommand(cmd SubmitTicketCommand) error {
	if strings.TrimSpace(cmd.TicketNumber) == "" {
		return errors.NewValidationError("Ticket number is required")
	}

	if uc.access.policy.RequireSequentialNumbers && !ticket.ParseDisplayNumber(cmd.TicketNumber).IsSequential() {
		return errors.NewValidationError("Ticket number must be a non-negative integer")
	}

	return nil
}
