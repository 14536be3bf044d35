package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts an immutable record. A clash on provider_reference is reported as
// ErrDuplicateProviderReference while keeping the driver error in the chain.
func (r *TransactionRepository) Create(ctx context.Context, rec *transaction.Record) error {
	query := `
		INSERT INTO transactions (
			id, amount, direction, status, description, provider_reference,
			current_balance, previous_balance, user_id, wallet_id,
			provider, fees, provider_fees, category, meta, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.Amount,
		rec.Direction,
		rec.Status,
		rec.Description,
		rec.ProviderReference,
		rec.CurrentBalance,
		rec.PreviousBalance,
		rec.UserID,
		rec.WalletID,
		rec.Provider,
		rec.Fees,
		rec.ProviderFees,
		rec.Category,
		rec.Meta,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, transaction.ProviderReferenceConstraint) {
			return fmt.Errorf("failed to create transaction: %w: %w",
				transaction.ErrDuplicateProviderReference{Reference: rec.ProviderReference}, err)
		}
		r.logger.Error("Failed to create transaction",
			"transaction_id", rec.ID.String(),
			"wallet_id", rec.WalletID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

const recordColumns = `id, amount, direction, status, description, COALESCE(provider_reference, ''),
		current_balance, previous_balance, user_id, wallet_id,
		provider, fees, provider_fees, category, meta, created_at, updated_at`

func scanRecord(row pgx.Row) (*transaction.Record, error) {
	var rec transaction.Record
	err := row.Scan(
		&rec.ID,
		&rec.Amount,
		&rec.Direction,
		&rec.Status,
		&rec.Description,
		&rec.ProviderReference,
		&rec.CurrentBalance,
		&rec.PreviousBalance,
		&rec.UserID,
		&rec.WalletID,
		&rec.Provider,
		&rec.Fees,
		&rec.ProviderFees,
		&rec.Category,
		&rec.Meta,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL
	`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrRecordNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return rec, nil
}

func (r *TransactionRepository) GetByProviderReference(ctx context.Context, reference string) (*transaction.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM transactions
		WHERE provider_reference = $1
	`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrRecordNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get transaction by provider reference", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get transaction by provider reference: %w", err)
	}

	return rec, nil
}
