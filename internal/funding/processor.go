// Package funding credits wallets for payments settled by the provider.
package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/ledger"
	"github.com/money-transfer-wallet/internal/logger"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// Verifier fetches the provider's own view of a charge.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// webhookBody is the part of the provider callback the processor reads. Everything else
// is kept verbatim as record meta.
type webhookBody struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

var errNoWallet = errors.New("no default wallet for funding user")

type Processor struct {
	db       persistence.TxBeginner
	wallets  wallet.Repository
	engine   *ledger.Engine
	verifier Verifier
	metrics  metrics.Recorder
	retry    config.TransferConfig
	logger   *slog.Logger
}

// NewProcessor takes the same conflict retry policy as transfers.
func NewProcessor(
	log *slog.Logger,
	retry config.TransferConfig,
	db persistence.TxBeginner,
	wallets wallet.Repository,
	engine *ledger.Engine,
	verifier Verifier,
	recorder metrics.Recorder,
) *Processor {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &Processor{
		db:       db,
		wallets:  wallets,
		engine:   engine,
		verifier: verifier,
		metrics:  recorder,
		retry:    retry,
		logger:   log,
	}
}

// ProcessFundingEvent credits the wallet named by a verified provider charge.
// It reports applied=false without error when there is nothing to credit, including when
// the charge was already credited by an earlier or concurrent delivery. A unit of work that
// loses a serialization race is restarted, so a concurrent duplicate ends up as applied=false.
// Errors are provider or storage failures.
func (p *Processor) ProcessFundingEvent(ctx context.Context, rawEvent []byte) (applied bool, err error) {
	log := logger.FromContext(ctx, p.logger)

	outcome := metrics.OutcomeSkipped
	defer func() {
		if err != nil {
			outcome = metrics.OutcomeError
		}
		p.metrics.IncFundingEvent(outcome)
	}()

	var body webhookBody
	if err := json.Unmarshal(rawEvent, &body); err != nil {
		log.Warn("Ignoring undecodable funding event", "error", err)
		return false, nil
	}
	reference := body.Data.Reference
	if reference == "" {
		log.Warn("Ignoring funding event without reference", "event", body.Event)
		return false, nil
	}
	log = log.With("reference", reference)

	verified, err := p.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		log.Error("Failed to verify funding transaction", "error", err)
		return false, fmt.Errorf("failed to verify transaction %s: %w", reference, err)
	}
	if verified.Status != paystack.StatusSuccess || verified.Amount == 0 {
		log.Info("Funding transaction not settled, skipping",
			"status", verified.Status,
			"amount", verified.Amount,
		)
		return false, nil
	}

	userID, err := uuid.Parse(verified.Metadata.UserID)
	if err != nil {
		log.Warn("Funding transaction carries no usable user id", "user_id", verified.Metadata.UserID)
		return false, nil
	}

	amount := decimal.New(verified.Amount, -2)
	providerFees := decimal.New(verified.Fees, -2)

	var record *transaction.Record
	for attempt := 1; ; attempt++ {
		record, err = p.credit(ctx, log, userID, amount, providerFees, reference, rawEvent)
		if err == nil || !persistence.IsRetryable(err) || attempt >= p.retry.MaxAttempts {
			break
		}
		log.Warn("Funding credit conflicted, retrying",
			"attempt", attempt,
			"sqlstate", persistence.SQLState(err),
		)
		if waitErr := p.wait(ctx, attempt); waitErr != nil {
			err = errors.Join(err, waitErr)
			break
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, errNoWallet):
		log.Warn("No wallet found for funding user", "user_id", userID.String())
		return false, nil
	case isAlreadyApplied(err):
		outcome = metrics.OutcomeDup
		log.Info("Funding event already applied")
		return false, nil
	default:
		log.Error("Failed to credit funding", "user_id", userID.String(), "error", err)
		return false, fmt.Errorf("failed to credit funding %s: %w", reference, err)
	}

	outcome = metrics.OutcomeSuccess
	p.metrics.IncLedgerEntry(string(record.Category), string(record.Direction))
	log.Info("Funding credited",
		"transaction_id", record.ID.String(),
		"wallet_id", record.WalletID.String(),
		"amount", record.Amount.StringFixed(2),
	)
	return true, nil
}

// credit runs one unit of work against the user's default wallet.
func (p *Processor) credit(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	amount, providerFees decimal.Decimal,
	reference string,
	rawEvent []byte,
) (*transaction.Record, error) {
	var record *transaction.Record
	err := persistence.RunInTx(ctx, p.db, persistence.RepeatableReadWrite, log, func(tx pgx.Tx) error {
		w, err := p.wallets.WithTx(tx).GetDefaultByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, wallet.ErrWalletNotFound{}) {
				return errNoWallet
			}
			return fmt.Errorf("failed to load wallet: %w", err)
		}

		id := uuid.New()
		record, err = p.engine.Apply(ctx, tx, w, amount, transaction.Fields{
			ID:                id,
			Description:       "Funding of account. ID: " + id.String(),
			ProviderReference: reference,
			Provider:          transaction.ProviderPaystack,
			Fees:              decimal.Zero,
			ProviderFees:      providerFees,
			Category:          transaction.CategoryFunding,
			Meta:              string(rawEvent),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Processor) wait(ctx context.Context, attempt int) error {
	if p.retry.RetryBackoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt) * p.retry.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isAlreadyApplied recognises the provider reference clash, whether raised by the insert or at commit.
func isAlreadyApplied(err error) bool {
	return errors.Is(err, transaction.ErrDuplicateProviderReference{}) ||
		persistence.IsUniqueViolation(err, transaction.ProviderReferenceConstraint)
}
