package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/transaction"
)

// Entry is the read-model projection of a committed transaction record.
// Money fields are decimal strings so the document never loses precision.
type Entry struct {
	RecordID          uuid.UUID             `json:"record_id" bson:"record_id"`
	WalletID          uuid.UUID             `json:"wallet_id" bson:"wallet_id"`
	UserID            uuid.UUID             `json:"user_id" bson:"user_id"`
	Amount            string                `json:"amount" bson:"amount"`
	Direction         transaction.Direction `json:"direction" bson:"direction"`
	Status            transaction.Status    `json:"status" bson:"status"`
	Category          transaction.Category  `json:"category" bson:"category"`
	Description       string                `json:"description" bson:"description"`
	Provider          string                `json:"provider" bson:"provider"`
	ProviderReference string                `json:"provider_reference,omitempty" bson:"provider_reference,omitempty"`
	Fees              string                `json:"fees" bson:"fees"`
	ProviderFees      string                `json:"provider_fees" bson:"provider_fees"`
	CurrentBalance    string                `json:"current_balance" bson:"current_balance"`
	PreviousBalance   string                `json:"previous_balance" bson:"previous_balance"`
	CreatedAt         time.Time             `json:"created_at" bson:"created_at"`
	ProjectedAt       *time.Time            `json:"projected_at,omitempty" bson:"projected_at,omitempty"`
}

// NewEntry projects a record. Meta is left out of the read model.
func NewEntry(r *transaction.Record) *Entry {
	return &Entry{
		RecordID:          r.ID,
		WalletID:          r.WalletID,
		UserID:            r.UserID,
		Amount:            r.Amount.StringFixed(2),
		Direction:         r.Direction,
		Status:            r.Status,
		Category:          r.Category,
		Description:       r.Description,
		Provider:          r.Provider,
		ProviderReference: r.ProviderReference,
		Fees:              r.Fees.StringFixed(2),
		ProviderFees:      r.ProviderFees.StringFixed(2),
		CurrentBalance:    r.CurrentBalance.StringFixed(2),
		PreviousBalance:   r.PreviousBalance.StringFixed(2),
		CreatedAt:         r.CreatedAt,
	}
}
