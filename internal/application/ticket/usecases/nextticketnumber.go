package usecases

import (
	"context"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// NextTicketNumberUseCase previews the next number without appending.
type NextTicketNumberUseCase struct {
	reader   ticket.LedgerReader
	resolver *ticket.SequenceResolver
	access   ledgerAccess
	logger   logger.Interface
}

func NewNextTicketNumberUseCase(
	reader ticket.LedgerReader,
	settings SettingsChecker,
	policy Policy,
	clock Clock,
	logger logger.Interface,
) *NextTicketNumberUseCase {
	return &NextTicketNumberUseCase{
		reader:   reader,
		resolver: ticket.NewSequenceResolver(),
		access:   newLedgerAccess(settings, policy, clock),
		logger:   logger,
	}
}

func (uc *NextTicketNumberUseCase) Execute(ctx context.Context) (*dto.NextTicketDTO, error) {
	if err := uc.access.checkSettings(); err != nil {
		return nil, err
	}

	rows, err := uc.access.readRows(ctx, uc.reader)
	if err != nil {
		uc.logger.Errorw("failed to read ledger", "error", err)
		return nil, err
	}

	now := uc.access.clock()
	return &dto.NextTicketDTO{
		NextTicketNumber: uc.resolver.ComputeNextNumber(rows, now).String(),
		IssuedToday:      len(ticket.TodayPartition(rows, now)),
	}, nil
}
