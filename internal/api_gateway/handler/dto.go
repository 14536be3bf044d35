package handler

import (
	"encoding/json"
	"time"

	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/wallet"
)

// TransferRequest moves amount from the caller's default wallet to the receiver's.
// Amount accepts both JSON numbers and numeric strings.
type TransferRequest struct {
	ReceiverID string      `json:"receiver_id" binding:"required,uuid"`
	Amount     json.Number `json:"amount" binding:"required,money"`
	Pin        string      `json:"pin" binding:"required,max=12"`
	Narration  string      `json:"narration" binding:"max=255"`
}

// FundingInitializeRequest starts a card funding, amount in major units
type FundingInitializeRequest struct {
	Amount json.Number `json:"amount" binding:"required,money"`
}

// RecordResponse is one side of a transfer
type RecordResponse struct {
	ID                string `json:"id"`
	WalletID          string `json:"wallet_id"`
	Amount            string `json:"amount"`
	Direction         string `json:"direction"`
	Status            string `json:"status"`
	Category          string `json:"category"`
	Description       string `json:"description"`
	ProviderReference string `json:"provider_reference"`
	PreviousBalance   string `json:"previous_balance"`
	CurrentBalance    string `json:"current_balance"`
	CreatedAt         string `json:"created_at"`
}

// TransferResponse holds both records of a transfer
type TransferResponse struct {
	Debit  RecordResponse `json:"debit"`
	Credit RecordResponse `json:"credit"`
}

// FundingInitializeResponse points the payer at the provider checkout
type FundingInitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// WebhookResponse acknowledges a provider callback
type WebhookResponse struct {
	Accepted bool `json:"accepted"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID              string `json:"id"`
	IsDefault       bool   `json:"is_default"`
	CurrentBalance  string `json:"current_balance"`
	PreviousBalance string `json:"previous_balance"`
	UpdatedAt       string `json:"updated_at"`
}

// LedgerEntryResponse represents a projected ledger entry in API responses
type LedgerEntryResponse struct {
	ID                string `json:"id"`
	WalletID          string `json:"wallet_id"`
	Amount            string `json:"amount"`
	Direction         string `json:"direction"`
	Status            string `json:"status"`
	Category          string `json:"category"`
	Description       string `json:"description"`
	Provider          string `json:"provider"`
	ProviderReference string `json:"provider_reference,omitempty"`
	Fees              string `json:"fees"`
	CurrentBalance    string `json:"current_balance"`
	PreviousBalance   string `json:"previous_balance"`
	CreatedAt         string `json:"created_at"`
}

type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// HistoryParams narrows the transaction history; empty filters match everything.
type HistoryParams struct {
	PaginationParams
	Category  string `form:"category" binding:"omitempty,oneof=p2p funding outward"`
	Direction string `form:"direction" binding:"omitempty,oneof=credit debit"`
}

func mapRecordToResponse(r *transaction.Record) RecordResponse {
	return RecordResponse{
		ID:                r.ID.String(),
		WalletID:          r.WalletID.String(),
		Amount:            r.Amount.StringFixed(2),
		Direction:         string(r.Direction),
		Status:            string(r.Status),
		Category:          string(r.Category),
		Description:       r.Description,
		ProviderReference: r.ProviderReference,
		PreviousBalance:   r.PreviousBalance.StringFixed(2),
		CurrentBalance:    r.CurrentBalance.StringFixed(2),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:              w.ID.String(),
		IsDefault:       w.IsDefault,
		CurrentBalance:  w.CurrentBalance.StringFixed(2),
		PreviousBalance: w.PreviousBalance.StringFixed(2),
		UpdatedAt:       w.UpdatedAt.Format(time.RFC3339),
	}
}

func mapLedgerEntryToResponse(e *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                e.RecordID.String(),
		WalletID:          e.WalletID.String(),
		Amount:            e.Amount,
		Direction:         string(e.Direction),
		Status:            string(e.Status),
		Category:          string(e.Category),
		Description:       e.Description,
		Provider:          e.Provider,
		ProviderReference: e.ProviderReference,
		Fees:              e.Fees,
		CurrentBalance:    e.CurrentBalance,
		PreviousBalance:   e.PreviousBalance,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}
