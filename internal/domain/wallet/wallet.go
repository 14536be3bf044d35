package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a user's custodial balance. Balances carry two fractional digits.
type Wallet struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	IsDefault       bool            `json:"is_default"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
}

// CanDebit reports whether amount can leave the wallet without the balance going negative.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(w.CurrentBalance)
}

// SetBalance records a committed balance change on the in-memory copy.
func (w *Wallet) SetBalance(previous, current decimal.Decimal) {
	w.PreviousBalance = previous
	w.CurrentBalance = current
	w.UpdatedAt = time.Now()
}
