package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository is read-only: the ledger never mutates users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates a missing or soft-deleted user
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID.String()
}

// Is matches any ErrUserNotFound when the target carries no user id
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	return t.UserID == uuid.Nil || e.UserID == t.UserID
}
