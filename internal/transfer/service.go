// Package transfer moves money between two users' default wallets.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/ledger"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const defaultNarration = "Wallet Transfer"

// PinVerifier compares a plaintext PIN with a stored hash. A nil error means they match.
type PinVerifier interface {
	VerifyPin(hash, pin string) error
}

// Request is one peer-to-peer transfer.
type Request struct {
	SenderID      uuid.UUID
	ReceiverID    uuid.UUID
	Amount        decimal.Decimal
	Narration     string
	Pin           string
	CorrelationID string
}

// Result holds the linked pair of records a transfer produces.
type Result struct {
	Debit  *transaction.Record `json:"debit"`
	Credit *transaction.Record `json:"credit"`
}

// Meta is shared verbatim by both records of a pair.
type Meta struct {
	SenderName       string    `json:"sender_name"`
	ReceiverName     string    `json:"receiver_name"`
	SenderWalletID   uuid.UUID `json:"sender_wallet_id"`
	ReceiverWalletID uuid.UUID `json:"receiver_wallet_id"`
}

type Service struct {
	db      persistence.TxBeginner
	users   user.Repository
	wallets wallet.Repository
	engine  *ledger.Engine
	pins    PinVerifier
	metrics metrics.Recorder
	cfg     config.TransferConfig
	logger  *slog.Logger
}

func NewService(
	logger *slog.Logger,
	cfg config.TransferConfig,
	db persistence.TxBeginner,
	users user.Repository,
	wallets wallet.Repository,
	engine *ledger.Engine,
	pins PinVerifier,
	recorder metrics.Recorder,
) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		db:      db,
		users:   users,
		wallets: wallets,
		engine:  engine,
		pins:    pins,
		metrics: recorder,
		cfg:     cfg,
		logger:  logger,
	}
}

// Transfer debits the sender's default wallet and credits the receiver's in one unit of work.
// Serialization failures and deadlocks restart the unit of work up to the configured attempts.
func (s *Service) Transfer(ctx context.Context, req Request) (res *Result, err error) {
	logger := s.logger
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveTransfer(outcomeOf(err), time.Since(start))
	}()

	sender, receiver, err := s.checkParticipants(ctx, req)
	if err != nil {
		if !isValidation(err) {
			logger.Error("Failed to load transfer participants", "error", err)
			return nil, err
		}
		logger.Info("Transfer rejected",
			"sender_id", req.SenderID.String(),
			"receiver_id", req.ReceiverID.String(),
			"reason", err.Error(),
		)
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		res, err = s.attempt(ctx, logger, req, sender, receiver)
		if err == nil {
			break
		}
		if isValidation(err) {
			logger.Info("Transfer rejected",
				"sender_id", req.SenderID.String(),
				"receiver_id", req.ReceiverID.String(),
				"reason", err.Error(),
			)
			return nil, err
		}
		if !persistence.IsRetryable(err) || attempt >= s.cfg.MaxAttempts {
			logger.Error("Failed to persist transfer",
				"sender_id", req.SenderID.String(),
				"receiver_id", req.ReceiverID.String(),
				"attempts", attempt,
				"error", err,
			)
			return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}

		s.metrics.IncTransferRetry()
		logger.Warn("Transfer conflicted, retrying",
			"attempt", attempt,
			"sqlstate", persistence.SQLState(err),
		)
		if waitErr := s.wait(ctx, attempt); waitErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, waitErr)
		}
	}

	for _, r := range []*transaction.Record{res.Debit, res.Credit} {
		s.metrics.IncLedgerEntry(string(r.Category), string(r.Direction))
	}
	logger.Info("Transfer committed",
		"debit_id", res.Debit.ID.String(),
		"credit_id", res.Credit.ID.String(),
		"amount", res.Debit.Amount.StringFixed(2),
	)
	return res, nil
}

func (s *Service) wait(ctx context.Context, attempt int) error {
	if s.cfg.RetryBackoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt) * s.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// checkParticipants runs every check that does not need the unit of work.
func (s *Service) checkParticipants(ctx context.Context, req Request) (*user.User, *user.User, error) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(2)) {
		return nil, nil, ErrInvalidAmount
	}
	if req.SenderID == req.ReceiverID {
		return nil, nil, ErrSelfTransfer
	}

	sender, err := s.lookup(ctx, req.SenderID)
	if err != nil {
		return nil, nil, err
	}
	if !sender.IsVerified {
		return nil, nil, ErrUnverifiedSender
	}
	if !sender.HasPin() {
		return nil, nil, ErrPinNotSet
	}
	if err := s.pins.VerifyPin(*sender.WithdrawalPin, req.Pin); err != nil {
		return nil, nil, ErrIncorrectPin
	}

	receiver, err := s.lookup(ctx, req.ReceiverID)
	if err != nil {
		return nil, nil, err
	}
	if !receiver.IsVerified {
		return nil, nil, ErrReceiverNotVerified
	}

	return sender, receiver, nil
}

func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound{}) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return u, nil
}

func (s *Service) attempt(ctx context.Context, logger *slog.Logger, req Request, sender, receiver *user.User) (*Result, error) {
	var res *Result
	err := persistence.RunInTx(ctx, s.db, persistence.RepeatableReadWrite, logger, func(tx pgx.Tx) error {
		from, to, err := s.wallets.WithTx(tx).GetDefaultPair(ctx, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		switch {
		case from == nil:
			return ErrSenderHasNoWallet
		case !from.CanDebit(req.Amount):
			return ErrInsufficientFunds
		case to == nil:
			return ErrReceiverHasNoWallet
		case from.ID == to.ID:
			return ErrSameWallet
		}

		meta, err := json.Marshal(Meta{
			SenderName:       sender.FullName(),
			ReceiverName:     receiver.FullName(),
			SenderWalletID:   from.ID,
			ReceiverWalletID: to.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to encode transfer meta: %w", err)
		}

		narration := strings.TrimSpace(req.Narration)
		if narration == "" {
			narration = defaultNarration
		}
		debitID, creditID := uuid.New(), uuid.New()

		debit, err := s.engine.Apply(ctx, tx, from, req.Amount.Neg(), transaction.Fields{
			ID:                debitID,
			Description:       narration + " - TO " + receiver.FullName(),
			ProviderReference: creditID.String(),
			Provider:          transaction.ProviderInternal,
			Category:          transaction.CategoryP2P,
			Meta:              string(meta),
		})
		if err != nil {
			return err
		}

		credit, err := s.engine.Apply(ctx, tx, to, req.Amount, transaction.Fields{
			ID:                creditID,
			Description:       narration + " - FROM " + sender.FullName(),
			ProviderReference: debitID.String(),
			Provider:          transaction.ProviderInternal,
			Category:          transaction.CategoryP2P,
			Meta:              string(meta),
		})
		if err != nil {
			return err
		}

		res = &Result{Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case isValidation(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
