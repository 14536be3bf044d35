package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFundingHandler_Initialize(t *testing.T) {
	userID := uuid.New()
	checkout := &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/xyz",
		AccessCode:       "xyz",
		Reference:        "ref-xyz",
	}

	tests := []struct {
		name       string
		userID     uuid.UUID
		body       interface{}
		setupMocks func(*MockFundingService)
		wantStatus int
	}{
		{
			name:   "Success",
			userID: userID,
			body:   map[string]interface{}{"amount": 500},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(500))
				})).Return(checkout, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Unauthenticated",
			body:       map[string]interface{}{"amount": 500},
			setupMocks: func(*MockFundingService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "MissingAmount",
			userID:     userID,
			body:       map[string]interface{}{},
			setupMocks: func(*MockFundingService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "BelowMinimum",
			userID: userID,
			body:   map[string]interface{}{"amount": "50"},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.Anything).Return(nil, service.ErrAmountTooSmall).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Unverified",
			userID: userID,
			body:   map[string]interface{}{"amount": "150"},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.Anything).Return(nil, service.ErrUnverifiedUser).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "UserGone",
			userID: userID,
			body:   map[string]interface{}{"amount": "150"},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.Anything).Return(nil, user.ErrUserNotFound{UserID: userID}).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "ProviderUnavailable",
			userID: userID,
			body:   map[string]interface{}{"amount": "150"},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.Anything).Return(nil, paystack.ErrUnavailable).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:   "ProviderRejected",
			userID: userID,
			body:   map[string]interface{}{"amount": "150"},
			setupMocks: func(m *MockFundingService) {
				m.On("InitializeFunding", mock.Anything, userID, mock.Anything).Return(nil, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockFundingService)
			tt.setupMocks(svc)

			r := newRouter(tt.userID)
			r.POST("/funding/initialize", NewFundingHandler(testLogger(), svc).Initialize)
			rr := doJSON(r, http.MethodPost, "/funding/initialize", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Data FundingInitializeResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, checkout.AuthorizationURL, resp.Data.AuthorizationURL)
				assert.Equal(t, checkout.Reference, resp.Data.Reference)
			}
			svc.AssertExpectations(t)
		})
	}
}
