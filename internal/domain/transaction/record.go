package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one immutable movement of money against one wallet.
// CurrentBalance and PreviousBalance snapshot the wallet immediately after and before the movement.
type Record struct {
	ID                uuid.UUID       `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Direction         Direction       `json:"direction"`
	Status            Status          `json:"status"`
	Description       string          `json:"description"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	PreviousBalance   decimal.Decimal `json:"previous_balance"`
	UserID            uuid.UUID       `json:"user_id"`
	WalletID          uuid.UUID       `json:"wallet_id"`
	Provider          string          `json:"provider"`
	Fees              decimal.Decimal `json:"fees"`
	ProviderFees      decimal.Decimal `json:"provider_fees"`
	Category          Category        `json:"category"`
	Meta              string          `json:"meta,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Fields are the caller-supplied parts of a record; the ledger engine fills in the rest.
type Fields struct {
	ID                uuid.UUID // zero means generate
	Description       string
	ProviderReference string // empty means none
	Provider          string
	Fees              decimal.Decimal
	ProviderFees      decimal.Decimal
	Category          Category
	Meta              string
}

// NewRecord builds a successful record for a balance change of wallet from previous to current.
func NewRecord(walletID, userID uuid.UUID, previous, current decimal.Decimal, f Fields) *Record {
	id := f.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	delta := current.Sub(previous)
	direction := DirectionCredit
	if delta.IsNegative() {
		direction = DirectionDebit
	}

	now := time.Now().UTC()
	return &Record{
		ID:                id,
		Amount:            delta.Abs(),
		Direction:         direction,
		Status:            StatusSuccessful,
		Description:       f.Description,
		ProviderReference: f.ProviderReference,
		CurrentBalance:    current,
		PreviousBalance:   previous,
		UserID:            userID,
		WalletID:          walletID,
		Provider:          f.Provider,
		Fees:              f.Fees,
		ProviderFees:      f.ProviderFees,
		Category:          f.Category,
		Meta:              f.Meta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
