// Package ledgertest provides an in-memory unit-of-work store that satisfies the wallet, user,
// transaction and outbox repositories. It mimics the Postgres behaviour the ledger relies on:
// first-committer-wins on wallet rows, the non-negative balance CHECK and the unique provider
// reference, reported with the same SQLSTATE codes.
package ledgertest

import (
	"context"
	"errors"
	"sort"
	"sync"

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

// Op names a store operation that can be made to fail.
type Op string

const (
	OpBegin         Op = "begin"
	OpUpdateBalance Op = "update_balance"
	OpCreateRecord  Op = "create_record"
	OpCreateOutbox  Op = "create_outbox"
	OpClaimOutbox   Op = "claim_outbox"
	OpCommit        Op = "commit"
)

type walletRow struct {
	wallet  wallet.Wallet
	version int
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	users     map[uuid.UUID]user.User
	wallets   map[uuid.UUID]*walletRow
	records   map[uuid.UUID]*transaction.Record
	refs      map[string]uuid.UUID
	messages  []*outbox.Message
	nextMsgID int64

	failures  map[Op][]error
	conflicts int

	begins  int
	commits int
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]user.User),
		wallets:  make(map[uuid.UUID]*walletRow),
		records:  make(map[uuid.UUID]*transaction.Record),
		refs:     make(map[string]uuid.UUID),
		failures: make(map[Op][]error),
	}
}

// AddUser seeds a user.
func (s *Store) AddUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddWallet seeds a wallet and returns a copy of it.
func (s *Store) AddWallet(userID uuid.UUID, balance decimal.Decimal) *wallet.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := wallet.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		IsDefault:      true,
		CurrentBalance: balance,
	}
	s.wallets[w.ID] = &walletRow{wallet: w, version: 1}
	cp := w
	return &cp
}

// FailNext makes the next call of op return err. Calls queue up per op.
func (s *Store) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// ConflictOnCommit makes the next n commits fail with a serialization failure.
func (s *Store) ConflictOnCommit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts += n
}

// Wallet returns the committed state of a wallet.
func (s *Store) Wallet(id uuid.UUID) wallet.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[id].wallet
}

// Records returns committed records, oldest first.
func (s *Store) Records() []*transaction.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*transaction.Record, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Messages returns committed outbox messages in insertion order.
func (s *Store) Messages() []*outbox.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*outbox.Message, len(s.messages))
	for i, m := range s.messages {
		cp := *m
		out[i] = &cp
	}
	return out
}

// TotalBalance sums every committed wallet balance.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, row := range s.wallets {
		total = total.Add(row.wallet.CurrentBalance)
	}
	return total
}

// Begins reports how many units of work were opened.
func (s *Store) Begins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

// Commits reports how many units of work committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// takeFailure pops the next injected error for op. Caller holds s.mu.
func (s *Store) takeFailure(op Op) error {
	q := s.failures[op]
	if len(q) == 0 {
		return nil
	}
	s.failures[op] = q[1:]
	return q[0]
}

// BeginTx opens a unit of work.
func (s *Store) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpBegin); err != nil {
		return nil, err
	}
	s.begins++

	return &Tx{
		store:    s,
		seen:     make(map[uuid.UUID]int),
		wallets:  make(map[uuid.UUID]wallet.Wallet),
		refsUsed: make(map[string]struct{}),
	}, nil
}

// Tx is a unit of work over a Store. Only Commit and Rollback are implemented;
// the embedded pgx.Tx is nil.
type Tx struct {
	pgx.Tx

	store    *Store
	seen     map[uuid.UUID]int // wallet id -> version first observed
	wallets  map[uuid.UUID]wallet.Wallet
	records  []*transaction.Record
	refsUsed map[string]struct{}
	messages []*outbox.Message
	closed   bool
}

func (tx *Tx) Commit(_ context.Context) error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true

	if err := s.takeFailure(OpCommit); err != nil {
		return err
	}
	if s.conflicts > 0 {
		s.conflicts--
		return &pgconn.PgError{Code: pgerrcode.SerializationFailure, Message: "could not serialize access due to concurrent update"}
	}

	for id := range tx.wallets {
		if s.wallets[id].version != tx.seen[id] {
			return &pgconn.PgError{Code: pgerrcode.SerializationFailure, Message: "could not serialize access due to concurrent update"}
		}
	}
	for ref := range tx.refsUsed {
		if _, exists := s.refs[ref]; exists {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: transaction.ProviderReferenceConstraint}
		}
	}

	for id, w := range tx.wallets {
		row := s.wallets[id]
		row.wallet = w
		row.version++
	}
	for _, r := range tx.records {
		s.records[r.ID] = r
		if r.ProviderReference != "" {
			s.refs[r.ProviderReference] = r.ID
		}
	}
	for _, m := range tx.messages {
		s.nextMsgID++
		m.ID = s.nextMsgID
		s.messages = append(s.messages, m)
	}
	s.commits++

	return nil
}

func (tx *Tx) Rollback(_ context.Context) error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	return nil
}

// readWallet returns the wallet as this unit of work sees it. Caller holds store.mu.
func (tx *Tx) readWallet(id uuid.UUID) (wallet.Wallet, bool) {
	if w, ok := tx.wallets[id]; ok {
		return w, true
	}
	row, ok := tx.store.wallets[id]
	if !ok {
		return wallet.Wallet{}, false
	}
	if _, seen := tx.seen[id]; !seen {
		tx.seen[id] = row.version
	}
	return row.wallet, true
}

var errTxClosed = errors.New("unit of work already closed")
