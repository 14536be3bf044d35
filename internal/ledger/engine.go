// Package ledger holds the single primitive that mutates money: applying one signed
// amount to one wallet together with the immutable record that explains it.
package ledger

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// Engine writes balance changes. It never begins or commits; callers own the unit of work.
type Engine struct {
	wallets      wallet.Repository
	transactions transaction.Repository
	outbox       outbox.Repository
	logger       *slog.Logger
}

func NewEngine(
	logger *slog.Logger,
	wallets wallet.Repository,
	transactions transaction.Repository,
	outboxRepo outbox.Repository,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outboxRepo,
		logger:       logger,
	}
}

// Apply moves w's balance by delta inside tx and inserts the matching record and outbox message.
// Non-negativity of debits is the caller's precondition; the wallets CHECK constraint backs it up.
// On success w reflects the new balances. On failure nothing in w changes and tx must be rolled back.
func (e *Engine) Apply(ctx context.Context, tx pgx.Tx, w *wallet.Wallet, delta decimal.Decimal, fields transaction.Fields) (*transaction.Record, error) {
	if delta.IsZero() {
		return nil, ErrZeroDelta
	}

	previous := w.CurrentBalance
	current := previous.Add(delta)

	if err := e.wallets.WithTx(tx).UpdateBalance(ctx, w.ID, current, previous); err != nil {
		return nil, &ErrPersistence{Op: "update wallet balance", Err: err}
	}

	record := transaction.NewRecord(w.ID, w.UserID, previous, current, fields)
	if err := e.transactions.WithTx(tx).Create(ctx, record); err != nil {
		return nil, &ErrPersistence{Op: "insert transaction", Err: err}
	}

	msg, err := outbox.ForRecord(record)
	if err != nil {
		return nil, &ErrPersistence{Op: "encode outbox message", Err: err}
	}
	if err := e.outbox.WithTx(tx).Stage(ctx, msg); err != nil {
		return nil, &ErrPersistence{Op: "stage outbox message", Err: err}
	}

	w.SetBalance(previous, current)

	e.logger.Debug("Ledger entry applied",
		"transaction_id", record.ID.String(),
		"wallet_id", w.ID.String(),
		"direction", string(record.Direction),
		"amount", record.Amount.String(),
		"category", string(record.Category),
	)

	return record, nil
}
