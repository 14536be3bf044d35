package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetDefaultByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetDefaultPair(ctx context.Context, first, second uuid.UUID) (*wallet.Wallet, *wallet.Wallet, error) {
	args := m.Called(ctx, first, second)
	a, _ := args.Get(0).(*wallet.Wallet)
	b, _ := args.Get(1).(*wallet.Wallet)
	return a, b, args.Error(2)
}

func (m *MockWalletRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, id uuid.UUID, current, previous decimal.Decimal) error {
	return m.Called(ctx, id, current, previous).Error(0)
}

func (m *MockWalletRepository) WithTx(pgx.Tx) wallet.Repository { return m }

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) GetByRecordID(ctx context.Context, recordID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) List(ctx context.Context, filter ledger.HistoryFilter, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter ledger.HistoryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) WithTx(pgx.Tx) user.Repository { return m }

type MockInitializer struct {
	mock.Mock
}

func (m *MockInitializer) InitializeTransaction(ctx context.Context, in paystack.InitializeRequest) (*paystack.Authorization, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Authorization), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
