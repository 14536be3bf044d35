package ledger_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/ledger"
	"github.com/money-transfer-wallet/internal/ledger/ledgertest"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newEngine(store *ledgertest.Store) *ledger.Engine {
	return ledger.NewEngine(newTestLogger(), store.Wallets(), store.Transactions(), store.Outbox())
}

func begin(t *testing.T, store *ledgertest.Store) pgx.Tx {
	t.Helper()
	tx, err := store.BeginTx(context.Background(), persistence.RepeatableReadWrite)
	require.NoError(t, err)
	return tx
}

func TestEngine_Apply_Credit(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	engine := newEngine(store)

	w := store.AddWallet(uuid.New(), decimal.NewFromInt(100))
	tx := begin(t, store)

	rec, err := engine.Apply(ctx, tx, w, decimal.RequireFromString("25.50"), transaction.Fields{
		Category:          transaction.CategoryFunding,
		Provider:          transaction.ProviderPaystack,
		ProviderReference: "ref-1",
		Description:       "Funding of account",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, transaction.DirectionCredit, rec.Direction)
	assert.Equal(t, transaction.StatusSuccessful, rec.Status)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, rec.PreviousBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, rec.CurrentBalance.Equal(decimal.RequireFromString("125.50")))

	// in-memory wallet reflects the write
	assert.True(t, w.CurrentBalance.Equal(decimal.RequireFromString("125.50")))
	assert.True(t, w.PreviousBalance.Equal(decimal.NewFromInt(100)))

	committed := store.Wallet(w.ID)
	assert.True(t, committed.CurrentBalance.Equal(rec.CurrentBalance))
	assert.True(t, committed.PreviousBalance.Equal(rec.PreviousBalance))

	require.Len(t, store.Records(), 1)
	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, rec.ID, msgs[0].TransactionID)
}

func TestEngine_Apply_DebitKeepsCallerFields(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	engine := newEngine(store)

	w := store.AddWallet(uuid.New(), decimal.NewFromInt(80))
	id := uuid.New()
	tx := begin(t, store)

	rec, err := engine.Apply(ctx, tx, w, decimal.NewFromInt(-30), transaction.Fields{
		ID:                id,
		Category:          transaction.CategoryP2P,
		Provider:          transaction.ProviderInternal,
		ProviderReference: "pair-id",
		Description:       "Wallet Transfer - TO Obi Ada",
		Meta:              `{"k":"v"}`,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, transaction.DirectionDebit, rec.Direction)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "pair-id", rec.ProviderReference)
	assert.Equal(t, `{"k":"v"}`, rec.Meta)
	assert.Equal(t, w.UserID, rec.UserID)
	assert.True(t, store.Wallet(w.ID).CurrentBalance.Equal(decimal.NewFromInt(50)))
}

func TestEngine_Apply_ZeroDelta(t *testing.T) {
	store := ledgertest.NewStore()
	engine := newEngine(store)
	w := store.AddWallet(uuid.New(), decimal.NewFromInt(10))
	tx := begin(t, store)

	_, err := engine.Apply(context.Background(), tx, w, decimal.Zero, transaction.Fields{})
	assert.ErrorIs(t, err, ledger.ErrZeroDelta)
}

func TestEngine_Apply_FailuresLeaveNothingBehind(t *testing.T) {
	ops := []ledgertest.Op{
		ledgertest.OpUpdateBalance,
		ledgertest.OpCreateRecord,
		ledgertest.OpCreateOutbox,
	}

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			ctx := context.Background()
			store := ledgertest.NewStore()
			engine := newEngine(store)
			w := store.AddWallet(uuid.New(), decimal.NewFromInt(100))

			cause := errors.New("injected")
			store.FailNext(op, cause)

			tx := begin(t, store)
			rec, err := engine.Apply(ctx, tx, w, decimal.NewFromInt(-40), transaction.Fields{Category: transaction.CategoryP2P})
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, &ledger.ErrPersistence{})
			assert.ErrorIs(t, err, cause)
			require.NoError(t, tx.Rollback(ctx))

			assert.True(t, w.CurrentBalance.Equal(decimal.NewFromInt(100)), "in-memory wallet untouched")
			assert.True(t, store.Wallet(w.ID).CurrentBalance.Equal(decimal.NewFromInt(100)))
			assert.Empty(t, store.Records())
			assert.Empty(t, store.Messages())
		})
	}
}

func TestEngine_Apply_DuplicateProviderReferenceStaysDetectable(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	engine := newEngine(store)
	w := store.AddWallet(uuid.New(), decimal.Zero)

	fields := transaction.Fields{
		Category:          transaction.CategoryFunding,
		Provider:          transaction.ProviderPaystack,
		ProviderReference: "ref-dup",
	}

	tx := begin(t, store)
	_, err := engine.Apply(ctx, tx, w, decimal.NewFromInt(10), fields)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	tx = begin(t, store)
	_, err = engine.Apply(ctx, tx, w, decimal.NewFromInt(10), fields)
	require.Error(t, err)
	assert.ErrorIs(t, err, transaction.ErrDuplicateProviderReference{})
	assert.True(t, persistence.IsUniqueViolation(err, transaction.ProviderReferenceConstraint))
	require.NoError(t, tx.Rollback(ctx))

	assert.True(t, store.Wallet(w.ID).CurrentBalance.Equal(decimal.NewFromInt(10)))
	assert.Len(t, store.Records(), 1)
}

func TestEngine_Apply_NegativeBalanceRejectedByStore(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	engine := newEngine(store)
	w := store.AddWallet(uuid.New(), decimal.NewFromInt(5))

	tx := begin(t, store)
	_, err := engine.Apply(ctx, tx, w, decimal.NewFromInt(-6), transaction.Fields{Category: transaction.CategoryP2P})
	require.Error(t, err)
	assert.True(t, persistence.IsCheckViolation(err))
	require.NoError(t, tx.Rollback(ctx))

	assert.True(t, store.Wallet(w.ID).CurrentBalance.Equal(decimal.NewFromInt(5)))
}
