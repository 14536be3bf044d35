// Package outbox holds the rows that carry committed ledger records to the read model.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/transaction"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProjected Status = "PROJECTED"
	// StatusParked rows are never picked up again and need an operator.
	StatusParked Status = "PARKED"
)

// Message is staged in the same unit of work as its record, so one exists exactly when the other does.
type Message struct {
	ID            int64
	TransactionID uuid.UUID
	WalletID      uuid.UUID
	Payload       json.RawMessage
	Status        Status
	Attempts      int
	CreatedAt     time.Time
	LastAttemptAt *time.Time
}

// ForRecord snapshots record as a read-model entry.
func ForRecord(record *transaction.Record) (*Message, error) {
	payload, err := json.Marshal(ledger.NewEntry(record))
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger entry %s: %w", record.ID, err)
	}
	return &Message{
		TransactionID: record.ID,
		WalletID:      record.WalletID,
		Payload:       payload,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Entry decodes the snapshot taken by ForRecord.
func (m *Message) Entry() (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	if entry.RecordID == uuid.Nil {
		return nil, fmt.Errorf("payload of outbox %d has no record id", m.ID)
	}
	return &entry, nil
}
