package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/logger"
)

// WalletServiceImpl reads wallets from Postgres and history from the ledger read model
type WalletServiceImpl struct {
	wallets    wallet.Repository
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewWalletService(logger *slog.Logger, wallets wallet.Repository, ledgerRepo ledger.Repository) WalletService {
	return &WalletServiceImpl{
		wallets:    wallets,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

func (s *WalletServiceImpl) ListWallets(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	wallets, err := s.wallets.ListByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to list wallets", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// ListTransactions pages through the read model. The count and the page are separate reads,
// so a projection landing in between can make them disagree by a few entries.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage
	log := logger.FromContext(ctx, s.logger).With("user_id", filter.UserID.String())

	entries, err := s.ledgerRepo.List(ctx, filter, perPage, offset)
	if err != nil {
		log.Error("Failed to list ledger entries",
			"page", page,
			"per_page", perPage,
			"error", err,
		)
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		log.Error("Failed to count ledger entries", "error", err)
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return entries, total, nil
}
