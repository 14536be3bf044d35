package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/money-transfer-wallet/internal/api_gateway"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/data/mongo"
	"github.com/money-transfer-wallet/internal/data/postgres"
	"github.com/money-transfer-wallet/internal/ledger"
	"github.com/money-transfer-wallet/internal/logger"
	"github.com/money-transfer-wallet/internal/platform/auth"
	"github.com/money-transfer-wallet/internal/platform/cache"
	"github.com/money-transfer-wallet/internal/platform/messaging/producers"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/money-transfer-wallet/internal/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := runGateway(ctx, cfg, log); err != nil {
		log.Error("API gateway stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("API gateway stopped")
}

// runGateway blocks until ctx is cancelled or the listener fails. Dependencies are
// released in reverse order of construction, after the server has drained.
func runGateway(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
	var release []func(context.Context) error
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		for i := len(release) - 1; i >= 0; i-- {
			err = errors.Join(err, release[i](shutdownCtx))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("wallet_gateway")
	if err := collector.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return err
	}
	release = append(release, func(context.Context) error { postgresDB.Close(); return nil })

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		return err
	}
	release = append(release, mongoDB.Close)

	var deduper cache.Deduper = cache.Nop{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		release = append(release, func(context.Context) error { return redisClient.Close() })
		deduper = cache.NewRedisDeduper(redisClient, cfg.Redis.DedupTTL, log.With("component", "webhook_dedupe"))
		log.Info("Webhook de-duplication enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DedupTTL.String())
	}

	fundingProducer, err := producers.NewFundingEventProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return err
	}
	release = append(release, func(context.Context) error { return fundingProducer.Close() })

	userRepo := postgres.NewUserRepository(log, postgresDB)
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	engine := ledger.NewEngine(
		log.With("component", "ledger_engine"),
		walletRepo,
		postgres.NewTransactionRepository(log, postgresDB),
		postgres.NewOutboxRepository(log, postgresDB),
	)
	paystackClient := paystack.NewClient(log.With("component", "paystack"), cfg.Paystack, collector)

	health := map[string]metrics.Check{
		"postgres": postgresDB.Ping,
		"mongodb":  mongoDB.Ping,
	}
	services := api_gateway.Services{
		Transfer: transfer.NewService(
			log.With("component", "transfer"),
			cfg.Transfer,
			postgresDB.Pool(),
			userRepo,
			walletRepo,
			engine,
			auth.BcryptPins{Cost: bcrypt.DefaultCost},
			collector,
		),
		Funding: service.NewFundingService(log, userRepo, paystackClient, cfg.Paystack.CallbackURL),
		Webhook: service.NewWebhookService(log, paystackClient, deduper, fundingProducer),
		Wallet:  service.NewWalletService(log, walletRepo, mongo.NewLedgerRepository(log, mongoDB.Database())),
		Health:  health,
	}

	server, err := api_gateway.NewServer(log, cfg, services, auth.NewTokens(cfg.Auth.JWTSecret), registry)
	if err != nil {
		return err
	}
	release = append(release, server.Stop)

	failed := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		failed <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, draining requests")
		return nil
	case err := <-failed:
		return err
	}
}
