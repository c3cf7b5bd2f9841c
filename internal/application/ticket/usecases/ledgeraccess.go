package usecases

import (
	"context"
	"strings"

	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
	"github.com/antrian-kiosk/antrian/internal/shared/errors"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

const msgMissingCredentials = "Server configuration error: Missing credentials"

// ledgerAccess bundles what every use case needs before touching the ledger.
type ledgerAccess struct {
	settings SettingsChecker
	policy   Policy
	clock    Clock
}

func newLedgerAccess(settings SettingsChecker, policy Policy, clock Clock) ledgerAccess {
	if clock == nil {
		clock = biztime.Now
	}
	return ledgerAccess{settings: settings, policy: policy, clock: clock}
}

// checkSettings must run before any ledger call.
func (a ledgerAccess) checkSettings() error {
	if a.settings == nil {
		return nil
	}
	if missing := a.settings.MissingSettings(); len(missing) > 0 {
		return errors.NewConfigurationError(msgMissingCredentials, "missing: "+strings.Join(missing, ", "))
	}
	return nil
}

func (a ledgerAccess) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.policy.Timeout)
}

func (a ledgerAccess) readRows(ctx context.Context, reader ticket.LedgerReader) ([]ticket.Row, error) {
	ctx, cancel := a.bounded(ctx)
	defer cancel()

	rows, err := reader.ReadRows(ctx)
	if err != nil {
		return nil, errors.NewLedgerReadError(err, ticket.LedgerCode(err))
	}
	return rows, nil
}

// record appends one row under the ledger timeout and maps failures to
// LedgerWriteError.
func (a ledgerAccess) record(ctx context.Context, recorder *ticket.TicketRecorder, number string) (*ticket.PersistedRecord, error) {
	ctx, cancel := a.bounded(ctx)
	defer cancel()

	rec, err := recorder.Record(ctx, number, a.clock())
	if err != nil {
		return nil, errors.NewLedgerWriteError(err, ticket.LedgerCode(err))
	}
	return rec, nil
}

// publishIssued never fails the request: the row is already in the ledger.
// The publish is detached from ctx, so a client that hangs up after the
// append still produces the event, and it is bounded by PublishTimeout.
func (a ledgerAccess) publishIssued(ctx context.Context, publisher events.EventPublisher, log logger.Interface, rec *ticket.PersistedRecord, source string) {
	timeout := a.policy.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	event := ticket.NewIssuedEvent(rec, source, a.clock())
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warnw("failed to publish ticket issued event",
			"ticket_number", rec.Number,
			"error", err,
		)
	}
}
