package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFundingServiceImpl_InitializeFunding(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	verified := &user.User{ID: userID, Email: "ada@example.com", IsVerified: true}
	checkout := &paystack.Authorization{AuthorizationURL: "https://checkout.paystack.com/abc", Reference: "ref-1"}

	tests := []struct {
		name       string
		amount     decimal.Decimal
		setupMocks func(*MockUserRepository, *MockInitializer)
		wantErr    error
	}{
		{
			name:   "Success",
			amount: decimal.RequireFromString("150.75"),
			setupMocks: func(users *MockUserRepository, p *MockInitializer) {
				users.On("GetByID", ctx, userID).Return(verified, nil).Once()
				p.On("InitializeTransaction", ctx, paystack.InitializeRequest{
					Email:       "ada@example.com",
					UserID:      userID.String(),
					AmountMinor: 15075,
					CallbackURL: "https://wallet.example.com/funded",
				}).Return(checkout, nil).Once()
			},
		},
		{
			name:       "BelowMinimum",
			amount:     decimal.RequireFromString("99.99"),
			setupMocks: func(*MockUserRepository, *MockInitializer) {},
			wantErr:    ErrAmountTooSmall,
		},
		{
			name:   "UserNotFound",
			amount: decimal.NewFromInt(100),
			setupMocks: func(users *MockUserRepository, _ *MockInitializer) {
				users.On("GetByID", ctx, userID).Return(nil, user.ErrUserNotFound{UserID: userID}).Once()
			},
			wantErr: user.ErrUserNotFound{},
		},
		{
			name:   "Unverified",
			amount: decimal.NewFromInt(100),
			setupMocks: func(users *MockUserRepository, _ *MockInitializer) {
				users.On("GetByID", ctx, userID).Return(&user.User{ID: userID}, nil).Once()
			},
			wantErr: ErrUnverifiedUser,
		},
		{
			name:   "ProviderUnavailable",
			amount: decimal.NewFromInt(500),
			setupMocks: func(users *MockUserRepository, p *MockInitializer) {
				users.On("GetByID", ctx, userID).Return(verified, nil).Once()
				p.On("InitializeTransaction", ctx, mock.Anything).Return(nil, paystack.ErrUnavailable).Once()
			},
			wantErr: paystack.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			provider := new(MockInitializer)
			tt.setupMocks(users, provider)
			svc := NewFundingService(testLogger(), users, provider, "https://wallet.example.com/funded")

			auth, err := svc.InitializeFunding(ctx, userID, tt.amount)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, auth)
				provider.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, checkout, auth)
			users.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}
