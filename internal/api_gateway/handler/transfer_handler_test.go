package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransferHandler_Create(t *testing.T) {
	senderID := uuid.New()
	receiverID := uuid.New()

	okResult := &transfer.Result{
		Debit: &transaction.Record{
			ID:             uuid.New(),
			Amount:         decimal.RequireFromString("25.5"),
			Direction:      transaction.DirectionDebit,
			Status:         transaction.StatusSuccessful,
			Category:       transaction.CategoryP2P,
			CurrentBalance: decimal.RequireFromString("74.5"),
		},
		Credit: &transaction.Record{
			ID:             uuid.New(),
			Amount:         decimal.RequireFromString("25.5"),
			Direction:      transaction.DirectionCredit,
			Status:         transaction.StatusSuccessful,
			Category:       transaction.CategoryP2P,
			CurrentBalance: decimal.RequireFromString("25.5"),
		},
	}
	okResult.Debit.ProviderReference = okResult.Credit.ID.String()
	okResult.Credit.ProviderReference = okResult.Debit.ID.String()

	validBody := map[string]interface{}{
		"receiver_id": receiverID.String(),
		"amount":      "25.50",
		"pin":         "1234",
		"narration":   "lunch",
	}
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	tests := []struct {
		name       string
		userID     uuid.UUID
		body       interface{}
		setupMocks func(*MockTransferService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "Success",
			userID: senderID,
			body:   validBody,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.MatchedBy(func(r transfer.Request) bool {
					return r.SenderID == senderID &&
						r.ReceiverID == receiverID &&
						r.Amount.Equal(decimal.RequireFromString("25.5")) &&
						r.Pin == "1234" &&
						r.Narration == "lunch" &&
						r.CorrelationID != ""
				})).Return(okResult, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "NumericAmount",
			userID: senderID,
			body:   `{"receiver_id":"` + receiverID.String() + `","amount":10,"pin":"1234"}`,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.MatchedBy(func(r transfer.Request) bool {
					return r.Amount.Equal(decimal.NewFromInt(10))
				})).Return(okResult, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Unauthenticated",
			userID:     uuid.Nil,
			body:       validBody,
			setupMocks: func(*MockTransferService) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "MalformedJSON",
			userID:     senderID,
			body:       `{"receiver_id`,
			setupMocks: func(*MockTransferService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "ThreeDecimals",
			userID:     senderID,
			body:       map[string]interface{}{"receiver_id": receiverID.String(), "amount": "1.005", "pin": "1234"},
			setupMocks: func(*MockTransferService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NegativeAmount",
			userID:     senderID,
			body:       map[string]interface{}{"receiver_id": receiverID.String(), "amount": "-5", "pin": "1234"},
			setupMocks: func(*MockTransferService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadReceiverID",
			userID:     senderID,
			body:       map[string]interface{}{"receiver_id": "nope", "amount": "5", "pin": "1234"},
			setupMocks: func(*MockTransferService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "InsufficientFunds",
			userID: senderID,
			body:   validBody,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.Anything).Return(nil, transfer.ErrInsufficientFunds).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:   "UnknownReceiver",
			userID: senderID,
			body:   validBody,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %s", transfer.ErrUserNotFound, receiverID)).Once()
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:   "ConflictExhausted",
			userID: senderID,
			body:   validBody,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrPersistenceFailure, serialization)).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:   "PersistenceFailure",
			userID: senderID,
			body:   validBody,
			setupMocks: func(m *MockTransferService) {
				m.On("Transfer", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrPersistenceFailure, errors.New("conn reset"))).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTransferService)
			tt.setupMocks(svc)
			h := NewTransferHandler(testLogger(), svc)

			r := newRouter(tt.userID)
			r.POST("/transfers", h.Create)
			rr := doJSON(r, http.MethodPost, "/transfers", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantCode != "" {
				var resp Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.CorrelationID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTransferHandler_Create_ResponseShape(t *testing.T) {
	senderID := uuid.New()
	debitID, creditID := uuid.New(), uuid.New()

	svc := new(MockTransferService)
	svc.On("Transfer", mock.Anything, mock.Anything).Return(&transfer.Result{
		Debit: &transaction.Record{
			ID:                debitID,
			Amount:            decimal.NewFromInt(5),
			Direction:         transaction.DirectionDebit,
			ProviderReference: creditID.String(),
		},
		Credit: &transaction.Record{
			ID:                creditID,
			Amount:            decimal.NewFromInt(5),
			Direction:         transaction.DirectionCredit,
			ProviderReference: debitID.String(),
		},
	}, nil).Once()

	r := newRouter(senderID)
	r.POST("/transfers", NewTransferHandler(testLogger(), svc).Create)
	rr := doJSON(r, http.MethodPost, "/transfers", map[string]interface{}{
		"receiver_id": uuid.New().String(),
		"amount":      "5",
		"pin":         "0000",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data TransferResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "5.00", resp.Data.Debit.Amount)
	assert.Equal(t, "debit", resp.Data.Debit.Direction)
	assert.Equal(t, creditID.String(), resp.Data.Debit.ProviderReference)
	assert.Equal(t, debitID.String(), resp.Data.Credit.ProviderReference)
}
