package usecases

import (
	"context"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// GetLastTicketUseCase reports the last ticket issued today so a client can
// compute the next one itself.
type GetLastTicketUseCase struct {
	reader   ticket.LedgerReader
	resolver *ticket.SequenceResolver
	access   ledgerAccess
	logger   logger.Interface
}

func NewGetLastTicketUseCase(
	reader ticket.LedgerReader,
	settings SettingsChecker,
	policy Policy,
	clock Clock,
	logger logger.Interface,
) *GetLastTicketUseCase {
	return &GetLastTicketUseCase{
		reader:   reader,
		resolver: ticket.NewSequenceResolver(),
		access:   newLedgerAccess(settings, policy, clock),
		logger:   logger,
	}
}

func (uc *GetLastTicketUseCase) Execute(ctx context.Context) (*dto.LastTicketDTO, error) {
	if err := uc.access.checkSettings(); err != nil {
		uc.logger.Errorw("ledger settings missing", "error", err)
		return nil, err
	}

	rows, err := uc.access.readRows(ctx, uc.reader)
	if err != nil {
		uc.logger.Errorw("failed to read ledger", "error", err)
		return nil, err
	}

	now := uc.access.clock()
	next := uc.resolver.ComputeNextNumber(rows, now)

	last, ok := uc.resolver.LastIssuedToday(rows, now)
	if !ok {
		uc.logger.Debugw("no ticket issued today", "rows", len(rows))
		return dto.ToLastTicketDTO(nil, next), nil
	}

	uc.logger.Debugw("last ticket resolved", "number", last.Number, "timestamp", last.Timestamp, "next", next.String())
	return dto.ToLastTicketDTO(&last, next), nil
}
