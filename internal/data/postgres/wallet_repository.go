package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx binds the repository to a unit of work
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const walletColumns = `id, user_id, is_default, current_balance, previous_balance, created_at, updated_at`

func scanWallet(row pgx.Row) (*wallet.Wallet, error) {
	var w wallet.Wallet
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.IsDefault,
		&w.CurrentBalance,
		&w.PreviousBalance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetDefaultByUserID returns the live default wallet of a user
func (r *WalletRepository) GetDefaultByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND is_default = true AND deleted_at IS NULL
	`

	w, err := scanWallet(r.querier.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get default wallet", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get default wallet: %w", err)
	}

	return w, nil
}

// GetDefaultPair reads both default wallets in one statement so both rows come from the same snapshot
func (r *WalletRepository) GetDefaultPair(ctx context.Context, firstUserID, secondUserID uuid.UUID) (*wallet.Wallet, *wallet.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id IN ($1, $2) AND is_default = true AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.querier.Query(ctx, query, firstUserID, secondUserID)
	if err != nil {
		r.logger.Error("Failed to get wallet pair",
			"first_user_id", firstUserID.String(),
			"second_user_id", secondUserID.String(),
			"error", err,
		)
		return nil, nil, fmt.Errorf("failed to get wallet pair: %w", err)
	}
	defer rows.Close()

	var first, second *wallet.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			r.logger.Error("Failed to scan wallet", "error", err)
			return nil, nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		if w.UserID == firstUserID {
			first = w
		}
		if w.UserID == secondUserID {
			second = w
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallets", "error", err)
		return nil, nil, fmt.Errorf("error iterating over wallets: %w", err)
	}

	return first, second, nil
}

// ListByUserID returns every live wallet a user owns, default first
func (r *WalletRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY is_default DESC, created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list wallets", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*wallet.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			r.logger.Error("Failed to scan wallet", "error", err)
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallets", "error", err)
		return nil, fmt.Errorf("error iterating over wallets: %w", err)
	}

	return wallets, nil
}

// UpdateBalance overwrites both balance columns. The UPDATE takes the row lock that
// serializes concurrent writers of the same wallet.
func (r *WalletRepository) UpdateBalance(ctx context.Context, id uuid.UUID, current, previous decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET current_balance = $1, previous_balance = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, current, previous, id)
	if err != nil {
		r.logger.Error("Failed to update wallet balance",
			"wallet_id", id.String(),
			"error", err,
		)
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrWalletUnchanged{WalletID: id}
	}

	return nil
}
