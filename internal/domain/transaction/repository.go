package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists transaction records. Records are insert-only.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByProviderReference(ctx context.Context, reference string) (*Record, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates a missing transaction record
type ErrRecordNotFound struct {
	ID        uuid.UUID
	Reference string
}

func (e ErrRecordNotFound) Error() string {
	if e.Reference != "" {
		return "transaction not found for reference: " + e.Reference
	}
	return "transaction not found: " + e.ID.String()
}

func (e ErrRecordNotFound) Is(target error) bool {
	_, ok := target.(ErrRecordNotFound)
	return ok
}

// ErrDuplicateProviderReference indicates a record with the same provider reference already exists
type ErrDuplicateProviderReference struct {
	Reference string
}

func (e ErrDuplicateProviderReference) Error() string {
	return "duplicate provider reference: " + e.Reference
}

// Is matches any ErrDuplicateProviderReference when the target carries no reference
func (e ErrDuplicateProviderReference) Is(target error) bool {
	t, ok := target.(ErrDuplicateProviderReference)
	if !ok {
		return false
	}
	return t.Reference == "" || e.Reference == t.Reference
}
