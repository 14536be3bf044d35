package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines wallet persistence operations
type Repository interface {
	GetDefaultByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// GetDefaultPair loads the default wallets of two users in a single read.
	// A user without a default wallet yields nil in its slot, not an error.
	GetDefaultPair(ctx context.Context, firstUserID, secondUserID uuid.UUID) (first, second *Wallet, err error)

	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Wallet, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, current, previous decimal.Decimal) error
	WithTx(tx pgx.Tx) Repository
}

// ErrWalletNotFound indicates a user has no live default wallet
type ErrWalletNotFound struct {
	UserID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found for user: " + e.UserID.String()
}

// Is matches any ErrWalletNotFound when the target carries no user id
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	return t.UserID == uuid.Nil || e.UserID == t.UserID
}

// ErrWalletUnchanged indicates an UPDATE matched no live wallet row
type ErrWalletUnchanged struct {
	WalletID uuid.UUID
}

func (e ErrWalletUnchanged) Error() string {
	return "wallet balance not updated: " + e.WalletID.String()
}
