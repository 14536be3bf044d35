// Package outbox_poller drains the transaction outbox into the ledger read model.
package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/platform/persistence"
)

// Row locks taken by ClaimPending live until the batch commits; read committed is enough.
var batchTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

type Poller struct {
	db          persistence.TxBeginner
	outboxRepo  outbox.Repository
	projector   Projector
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	db persistence.TxBeginner,
	outboxRepo outbox.Repository,
	projector Projector,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		db:          db,
		outboxRepo:  outboxRepo,
		projector:   projector,
		logger:      logger.With("component", "outbox_poller"),
		interval:    cfg.PollingInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxRetryAttempts,
	}
}

// Start drains on every tick until ctx is cancelled. A batch that was claimed and
// projected in full is followed by another one without waiting for the tick.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"interval", p.interval.String(),
		"batch_size", p.batchSize,
		"max_attempts", p.maxAttempts,
	)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			for ctx.Err() == nil {
				projected, err := p.drainBatch(ctx)
				if err != nil {
					p.logger.Error("Outbox batch failed", "error", err)
					break
				}
				if projected < p.batchSize {
					break
				}
			}
		}
	}
}

// drainBatch claims one batch and settles every row in it inside a single unit of work.
// It returns how many rows reached the read model.
func (p *Poller) drainBatch(ctx context.Context) (int, error) {
	var claimed, projected int

	err := persistence.RunInTx(ctx, p.db, batchTxOptions, p.logger, func(tx pgx.Tx) error {
		repo := p.outboxRepo.WithTx(tx)

		messages, err := repo.ClaimPending(ctx, p.batchSize)
		if err != nil {
			return err
		}
		claimed = len(messages)

		for _, msg := range messages {
			ok, err := p.settle(ctx, repo, msg)
			if err != nil {
				return err
			}
			if ok {
				projected++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to drain outbox: %w", err)
	}

	if claimed > 0 {
		p.logger.Info("Drained outbox batch", "claimed", claimed, "projected", projected)
	}
	return projected, nil
}

// settle projects msg and records the result on its row. Only a failure to write
// the row itself is returned.
func (p *Poller) settle(ctx context.Context, repo outbox.Repository, msg *outbox.Message) (bool, error) {
	logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID.String())

	err := p.projector.Project(ctx, msg)
	switch {
	case err == nil:
		return true, repo.MarkProjected(ctx, msg.ID)

	case errors.Is(err, ErrUndecodablePayload):
		logger.Error("Parking undecodable outbox message", "error", err)
		return false, repo.Park(ctx, msg.ID)
	}

	logger.Warn("Failed to project outbox message", "attempt", msg.Attempts+1, "error", err)
	status, recErr := repo.RecordFailure(ctx, msg.ID, p.maxAttempts)
	if recErr != nil {
		return false, recErr
	}
	if status == outbox.StatusParked {
		logger.Error("Outbox message exhausted its attempts and was parked", "attempts", msg.Attempts+1)
	}
	return false, nil
}
