package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/transaction"
)

// HistoryFilter selects one user's entries. Zero-valued Category or Direction match everything.
type HistoryFilter struct {
	UserID    uuid.UUID
	Category  transaction.Category
	Direction transaction.Direction
}

type Repository interface {
	// Create fails with ErrDuplicateEntry when the record was projected before.
	Create(ctx context.Context, entry *Entry) error
	GetByRecordID(ctx context.Context, recordID uuid.UUID) (*Entry, error)
	// List returns matching entries newest first.
	List(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*Entry, error)
	Count(ctx context.Context, filter HistoryFilter) (int64, error)
}

type ErrEntryNotFound struct {
	RecordID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return fmt.Sprintf("ledger entry for record %s not found", e.RecordID)
}

func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	return ok && (t.RecordID == uuid.Nil || t.RecordID == e.RecordID)
}

type ErrDuplicateEntry struct {
	RecordID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return fmt.Sprintf("record %s is already in the ledger", e.RecordID)
}

func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	return ok && (t.RecordID == uuid.Nil || t.RecordID == e.RecordID)
}
