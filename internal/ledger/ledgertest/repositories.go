package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

func bind(s *Store, tx pgx.Tx) *Tx {
	if tx == nil {
		return nil
	}
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		panic("ledgertest: unit of work does not belong to this store")
	}
	return t
}

// Wallets returns a wallet.Repository over the store.
func (s *Store) Wallets() wallet.Repository { return &walletRepo{store: s} }

// Users returns a user.Repository over the store.
func (s *Store) Users() user.Repository { return &userRepo{store: s} }

// Transactions returns a transaction.Repository over the store.
func (s *Store) Transactions() transaction.Repository { return &transactionRepo{store: s} }

// Outbox returns an outbox.Repository over the store.
func (s *Store) Outbox() outbox.Repository { return &outboxRepo{store: s} }

type walletRepo struct {
	store *Store
	tx    *Tx
}

func (r *walletRepo) WithTx(tx pgx.Tx) wallet.Repository {
	return &walletRepo{store: r.store, tx: bind(r.store, tx)}
}

// read returns the wallet as visible to the bound unit of work, or committed state. Caller holds store.mu.
func (r *walletRepo) read(id uuid.UUID) (wallet.Wallet, bool) {
	if r.tx != nil {
		return r.tx.readWallet(id)
	}
	row, ok := r.store.wallets[id]
	if !ok {
		return wallet.Wallet{}, false
	}
	return row.wallet, true
}

func (r *walletRepo) defaultFor(userID uuid.UUID) *wallet.Wallet {
	for id, row := range r.store.wallets {
		if row.wallet.UserID == userID && row.wallet.IsDefault && row.wallet.DeletedAt == nil {
			w, _ := r.read(id)
			return &w
		}
	}
	return nil
}

func (r *walletRepo) GetDefaultByUserID(_ context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if w := r.defaultFor(userID); w != nil {
		return w, nil
	}
	return nil, wallet.ErrWalletNotFound{UserID: userID}
}

func (r *walletRepo) GetDefaultPair(_ context.Context, firstUserID, secondUserID uuid.UUID) (*wallet.Wallet, *wallet.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.defaultFor(firstUserID), r.defaultFor(secondUserID), nil
}

func (r *walletRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*wallet.Wallet, 0)
	for id, row := range r.store.wallets {
		if row.wallet.UserID == userID && row.wallet.DeletedAt == nil {
			w, _ := r.read(id)
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

func (r *walletRepo) UpdateBalance(_ context.Context, id uuid.UUID, current, previous decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.tx == nil {
		panic("ledgertest: balance updates require a unit of work")
	}
	if r.tx.closed {
		return errTxClosed
	}
	if err := r.store.takeFailure(OpUpdateBalance); err != nil {
		return err
	}

	w, ok := r.read(id)
	if !ok {
		return wallet.ErrWalletUnchanged{WalletID: id}
	}
	if current.IsNegative() {
		return &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "wallets_current_balance_check"}
	}

	w.CurrentBalance = current
	w.PreviousBalance = previous
	r.tx.wallets[id] = w
	return nil
}

type userRepo struct {
	store *Store
}

func (r *userRepo) WithTx(pgx.Tx) user.Repository { return r }

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, user.ErrUserNotFound{UserID: id}
	}
	return &u, nil
}

type transactionRepo struct {
	store *Store
	tx    *Tx
}

func (r *transactionRepo) WithTx(tx pgx.Tx) transaction.Repository {
	return &transactionRepo{store: r.store, tx: bind(r.store, tx)}
}

func (r *transactionRepo) Create(_ context.Context, rec *transaction.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.tx == nil {
		panic("ledgertest: records are written inside a unit of work")
	}
	if r.tx.closed {
		return errTxClosed
	}
	if err := r.store.takeFailure(OpCreateRecord); err != nil {
		return err
	}

	if ref := rec.ProviderReference; ref != "" {
		_, committed := r.store.refs[ref]
		_, staged := r.tx.refsUsed[ref]
		if committed || staged {
			return fmt.Errorf("duplicate key value violates unique constraint: %w: %w",
				transaction.ErrDuplicateProviderReference{Reference: ref},
				&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: transaction.ProviderReferenceConstraint})
		}
		r.tx.refsUsed[ref] = struct{}{}
	}

	cp := *rec
	r.tx.records = append(r.tx.records, &cp)
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id uuid.UUID) (*transaction.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if rec, ok := r.store.records[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, transaction.ErrRecordNotFound{ID: id}
}

func (r *transactionRepo) GetByProviderReference(_ context.Context, reference string) (*transaction.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id, ok := r.store.refs[reference]; ok {
		cp := *r.store.records[id]
		return &cp, nil
	}
	return nil, transaction.ErrRecordNotFound{Reference: reference}
}

// Status changes on outbox rows apply to committed state straight away, whether or not
// the repository is bound to a unit of work.
type outboxRepo struct {
	store *Store
	tx    *Tx
}

func (r *outboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return &outboxRepo{store: r.store, tx: bind(r.store, tx)}
}

func (r *outboxRepo) Stage(_ context.Context, m *outbox.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.tx == nil {
		panic("ledgertest: outbox messages are staged inside a unit of work")
	}
	if r.tx.closed {
		return errTxClosed
	}
	if err := r.store.takeFailure(OpCreateOutbox); err != nil {
		return err
	}
	if hasMessageFor(r.store.messages, m.TransactionID) || hasMessageFor(r.tx.messages, m.TransactionID) {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: outbox.TransactionConstraint}
	}

	cp := *m
	r.tx.messages = append(r.tx.messages, &cp)
	return nil
}

func hasMessageFor(messages []*outbox.Message, transactionID uuid.UUID) bool {
	for _, m := range messages {
		if m.TransactionID == transactionID {
			return true
		}
	}
	return false
}

func (r *outboxRepo) ClaimPending(_ context.Context, limit int) ([]*outbox.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure(OpClaimOutbox); err != nil {
		return nil, err
	}

	out := make([]*outbox.Message, 0, limit)
	for _, m := range r.store.messages {
		if len(out) == limit {
			break
		}
		if m.Status == outbox.StatusPending {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// row returns the committed message with id. Caller holds store.mu.
func (r *outboxRepo) row(id int64) (*outbox.Message, error) {
	for _, m := range r.store.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, outbox.ErrMessageNotFound{ID: id}
}

func (r *outboxRepo) setStatus(id int64, status outbox.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, err := r.row(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	m.Status = status
	m.LastAttemptAt = &now
	return nil
}

func (r *outboxRepo) MarkProjected(_ context.Context, id int64) error {
	return r.setStatus(id, outbox.StatusProjected)
}

func (r *outboxRepo) Park(_ context.Context, id int64) error {
	return r.setStatus(id, outbox.StatusParked)
}

func (r *outboxRepo) RecordFailure(_ context.Context, id int64, maxAttempts int) (outbox.Status, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, err := r.row(id)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	m.Attempts++
	m.LastAttemptAt = &now
	if maxAttempts > 0 && m.Attempts >= maxAttempts {
		m.Status = outbox.StatusParked
	}
	return m.Status, nil
}

func (r *outboxRepo) FindByTransactionID(_ context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range r.store.messages {
		if m.TransactionID == transactionID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, outbox.ErrMessageNotFound{TransactionID: transactionID}
}
