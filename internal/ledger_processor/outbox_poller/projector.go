package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/platform/metrics"
)

// ErrUndecodablePayload marks a row that no retry will fix.
var ErrUndecodablePayload = errors.New("outbox payload is not a ledger entry")

// Projector copies one staged record into the read model. It must be idempotent per record.
type Projector interface {
	Project(ctx context.Context, message *outbox.Message) error
}

// LedgerProjector writes entries through a ledger.Repository (Mongo in production).
type LedgerProjector struct {
	entries ledger.Repository
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewLedgerProjector(entries ledger.Repository, recorder metrics.Recorder, logger *slog.Logger) *LedgerProjector {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &LedgerProjector{
		entries: entries,
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Project treats an entry that is already present as projected, so a crash between the
// insert and the status update only costs a duplicate key on the next pass.
func (p *LedgerProjector) Project(ctx context.Context, message *outbox.Message) error {
	entry, err := message.Entry()
	if err != nil {
		p.metrics.IncOutboxProjection(metrics.OutcomeError)
		return fmt.Errorf("%w: outbox %d: %w", ErrUndecodablePayload, message.ID, err)
	}

	projectedAt := p.now()
	entry.ProjectedAt = &projectedAt

	err = p.entries.Create(ctx, entry)
	switch {
	case err == nil:
		p.metrics.IncOutboxProjection(metrics.OutcomeSuccess)
	case errors.Is(err, ledger.ErrDuplicateEntry{}):
		p.metrics.IncOutboxProjection(metrics.OutcomeDup)
		p.logger.Info("Ledger entry already projected", "transaction_id", entry.RecordID.String())
	default:
		p.metrics.IncOutboxProjection(metrics.OutcomeError)
		return fmt.Errorf("failed to project ledger entry %s: %w", entry.RecordID, err)
	}
	return nil
}
