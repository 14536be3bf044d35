package components

import (
	"log/slog"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/domain/outbox"
	"github.com/money-transfer-wallet/internal/domain/transaction"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/funding"
	"github.com/money-transfer-wallet/internal/ledger"
	"github.com/money-transfer-wallet/internal/ledger_processor/service"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/money-transfer-wallet/internal/platform/persistence"
)

// CreateFundingService wires the funding processor over the ledger engine and puts it behind
// the worker pool. If the pool cannot be built the bare processor is returned.
func CreateFundingService(
	logger *slog.Logger,
	cfg *config.Config,
	db persistence.TxBeginner,
	walletRepo wallet.Repository,
	transactionRepo transaction.Repository,
	outboxRepo outbox.Repository,
	verifier funding.Verifier,
	recorder metrics.Recorder,
) service.FundingProcessor {
	engine := ledger.NewEngine(logger.With("component", "ledger_engine"), walletRepo, transactionRepo, outboxRepo)
	processor := funding.NewProcessor(logger.With("component", "funding_processor"), cfg.Transfer, db, walletRepo, engine, verifier, recorder)

	pooled, err := service.NewWorkerPoolFundingService(
		processor,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool, falling back to direct processing", "error", err)
		return processor
	}

	logger.Info("Created pooled funding service", "pool_size", cfg.WorkerPool.Size)
	return pooled
}
