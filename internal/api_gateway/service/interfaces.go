package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/money-transfer-wallet/internal/transfer"
	"github.com/shopspring/decimal"
)

// TransferService moves money between two users. Satisfied by *transfer.Service.
type TransferService interface {
	Transfer(ctx context.Context, req transfer.Request) (*transfer.Result, error)
}

// WalletService exposes a user's wallets and ledger history
type WalletService interface {
	// ListWallets returns the caller's live wallets, default first
	ListWallets(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)

	// ListTransactions returns one page of projected ledger entries matching filter, plus the total count
	ListTransactions(ctx context.Context, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error)
}

// FundingService starts a card funding with the payment provider
type FundingService interface {
	// InitializeFunding returns the provider checkout for amount in major units.
	// Returns ErrUnverifiedUser or ErrAmountTooSmall for rejected requests.
	InitializeFunding(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*paystack.Authorization, error)
}

// WebhookService authenticates provider webhooks and queues them for the ledger processor
type WebhookService interface {
	// AcceptPaystackEvent reports false, nil when the signature does not match
	AcceptPaystackEvent(ctx context.Context, body []byte, signature, correlationID string) (bool, error)
}
