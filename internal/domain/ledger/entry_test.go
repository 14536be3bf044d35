package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewEntry(t *testing.T) {
	r := transaction.NewRecord(uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.RequireFromString("35.5"), transaction.Fields{
		Category:          transaction.CategoryFunding,
		Provider:          transaction.ProviderPaystack,
		ProviderReference: "T123",
		ProviderFees:      decimal.RequireFromString("1.5"),
		Meta:              `{"raw":true}`,
	})

	e := NewEntry(r)

	assert.Equal(t, r.ID, e.RecordID)
	assert.Equal(t, r.WalletID, e.WalletID)
	assert.Equal(t, "25.50", e.Amount)
	assert.Equal(t, "35.50", e.CurrentBalance)
	assert.Equal(t, "10.00", e.PreviousBalance)
	assert.Equal(t, "0.00", e.Fees)
	assert.Equal(t, "1.50", e.ProviderFees)
	assert.Equal(t, transaction.DirectionCredit, e.Direction)
	assert.Equal(t, "T123", e.ProviderReference)
}

func TestEntryErrors_Is(t *testing.T) {
	id := uuid.New()
	assert.True(t, errors.Is(ErrEntryNotFound{RecordID: id}, ErrEntryNotFound{}))
	assert.False(t, errors.Is(ErrEntryNotFound{RecordID: id}, ErrEntryNotFound{RecordID: uuid.New()}))
	assert.True(t, errors.Is(ErrDuplicateEntry{RecordID: id}, ErrDuplicateEntry{RecordID: id}))
}
