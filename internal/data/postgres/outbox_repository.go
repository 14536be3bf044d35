package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/platform/persistence"
)

const outboxColumns = `id, transaction_id, wallet_id, payload, status, attempts, created_at, last_attempt_at`

// OutboxRepository stores outbox.Message rows in transaction_outbox.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{querier: db.Pool(), logger: logger}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger}
}

func (r *OutboxRepository) Stage(ctx context.Context, message *outbox.Message) error {
	const query = `
		INSERT INTO transaction_outbox (transaction_id, wallet_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.querier.QueryRow(ctx, query,
		message.TransactionID,
		message.WalletID,
		message.Payload,
		string(message.Status),
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		if persistence.IsUniqueViolation(err, outbox.TransactionConstraint) {
			return fmt.Errorf("failed to stage outbox message: %w: %w",
				outbox.ErrDuplicateMessage{TransactionID: message.TransactionID}, err)
		}
		r.logger.Error("Failed to stage outbox message",
			"transaction_id", message.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to stage outbox message: %w", err)
	}
	return nil
}

// ClaimPending must run inside a unit of work for the row locks to mean anything.
// SKIP LOCKED keeps concurrent processors off each other's rows.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	query := `SELECT ` + outboxColumns + `
		FROM transaction_outbox
		WHERE status = $1
		ORDER BY id
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := r.querier.Query(ctx, query, string(outbox.StatusPending), limit)
	if err != nil {
		r.logger.Error("Failed to claim pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to claim pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*outbox.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) MarkProjected(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, outbox.StatusProjected)
}

func (r *OutboxRepository) Park(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, outbox.StatusParked)
}

func (r *OutboxRepository) setStatus(ctx context.Context, id int64, status outbox.Status) error {
	const query = `
		UPDATE transaction_outbox
		SET status = $2, last_attempt_at = now()
		WHERE id = $1`

	tag, err := r.querier.Exec(ctx, query, id, string(status))
	if err != nil {
		r.logger.Error("Failed to set outbox message status", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to set outbox message %d to %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

// RecordFailure bumps attempts and parks in one statement, so two processors cannot
// both read the old count and miss the cutoff.
func (r *OutboxRepository) RecordFailure(ctx context.Context, id int64, maxAttempts int) (outbox.Status, error) {
	const query = `
		UPDATE transaction_outbox
		SET attempts = attempts + 1,
		    last_attempt_at = now(),
		    status = CASE WHEN $2 > 0 AND attempts + 1 >= $2 THEN $3 ELSE status END
		WHERE id = $1
		RETURNING status`

	var status string
	err := r.querier.QueryRow(ctx, query, id, maxAttempts, string(outbox.StatusParked)).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", outbox.ErrMessageNotFound{ID: id}
		}
		r.logger.Error("Failed to record outbox failure", "id", id, "error", err)
		return "", fmt.Errorf("failed to record failure on outbox message %d: %w", id, err)
	}
	return outbox.Status(status), nil
}

func (r *OutboxRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	query := `SELECT ` + outboxColumns + ` FROM transaction_outbox WHERE transaction_id = $1`

	m, err := scanMessage(r.querier.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbox.ErrMessageNotFound{TransactionID: transactionID}
		}
		return nil, fmt.Errorf("failed to find outbox message for %s: %w", transactionID, err)
	}
	return m, nil
}

func scanMessage(row pgx.Row) (*outbox.Message, error) {
	var (
		m      outbox.Message
		status string
	)
	if err := row.Scan(
		&m.ID,
		&m.TransactionID,
		&m.WalletID,
		&m.Payload,
		&status,
		&m.Attempts,
		&m.CreatedAt,
		&m.LastAttemptAt,
	); err != nil {
		return nil, err
	}
	m.Status = outbox.Status(status)
	return &m, nil
}
