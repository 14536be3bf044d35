package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/logger"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/shopspring/decimal"
)

// MinimumFunding is the smallest card funding accepted, in major units.
var MinimumFunding = decimal.NewFromInt(100)

// Initializer starts a provider checkout. Satisfied by *paystack.Client.
type Initializer interface {
	InitializeTransaction(ctx context.Context, in paystack.InitializeRequest) (*paystack.Authorization, error)
}

type FundingServiceImpl struct {
	users       user.Repository
	provider    Initializer
	callbackURL string
	logger      *slog.Logger
}

func NewFundingService(logger *slog.Logger, users user.Repository, provider Initializer, callbackURL string) FundingService {
	return &FundingServiceImpl{
		users:       users,
		provider:    provider,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

func (s *FundingServiceImpl) InitializeFunding(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*paystack.Authorization, error) {
	if amount.LessThan(MinimumFunding) {
		return nil, ErrAmountTooSmall
	}
	log := logger.FromContext(ctx, s.logger).With("user_id", userID.String())

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound{}) {
			return nil, err
		}
		log.Error("Failed to load user for funding", "error", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsVerified {
		return nil, ErrUnverifiedUser
	}

	// the provider takes kobo
	minor := amount.Shift(2).Truncate(0).IntPart()

	auth, err := s.provider.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       u.Email,
		UserID:      u.ID.String(),
		AmountMinor: minor,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		log.Error("Failed to initialize funding",
			"amount", amount.StringFixed(2),
			"error", err,
		)
		return nil, fmt.Errorf("failed to initialize funding: %w", err)
	}

	log.Info("Funding initialized",
		"amount", amount.StringFixed(2),
		"reference", auth.Reference,
	)
	return auth, nil
}
