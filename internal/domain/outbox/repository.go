package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// Stage must run inside the unit of work that writes the record.
	Stage(ctx context.Context, message *Message) error
	// ClaimPending locks up to limit pending rows, oldest first.
	ClaimPending(ctx context.Context, limit int) ([]*Message, error)
	MarkProjected(ctx context.Context, id int64) error
	Park(ctx context.Context, id int64) error
	// RecordFailure counts a failed attempt and parks the row once maxAttempts is reached.
	// It returns the status the row ends up in.
	RecordFailure(ctx context.Context, id int64, maxAttempts int) (Status, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Message, error)
	WithTx(tx pgx.Tx) Repository
}

type ErrMessageNotFound struct {
	ID            int64
	TransactionID uuid.UUID
}

func (e ErrMessageNotFound) Error() string {
	if e.TransactionID != uuid.Nil {
		return fmt.Sprintf("no outbox message for transaction %s", e.TransactionID)
	}
	return fmt.Sprintf("outbox message %d not found", e.ID)
}

func (e ErrMessageNotFound) Is(target error) bool {
	t, ok := target.(ErrMessageNotFound)
	if !ok {
		return false
	}
	return (t.ID == 0 || t.ID == e.ID) && (t.TransactionID == uuid.Nil || t.TransactionID == e.TransactionID)
}

// TransactionConstraint keeps a transaction to a single outbox row.
const TransactionConstraint = "transaction_outbox_transaction_id_key"

// ErrDuplicateMessage is returned when a transaction already has an outbox row.
type ErrDuplicateMessage struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	return fmt.Sprintf("transaction %s already has an outbox message", e.TransactionID)
}
