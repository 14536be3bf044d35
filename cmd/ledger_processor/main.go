package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/data/mongo"
	"github.com/money-transfer-wallet/internal/data/postgres"
	"github.com/money-transfer-wallet/internal/ledger_processor/components"
	"github.com/money-transfer-wallet/internal/ledger_processor/consumer"
	"github.com/money-transfer-wallet/internal/ledger_processor/outbox_poller"
	"github.com/money-transfer-wallet/internal/ledger_processor/service"
	"github.com/money-transfer-wallet/internal/logger"
	"github.com/money-transfer-wallet/internal/platform/messaging/consumers"
	"github.com/money-transfer-wallet/internal/platform/messaging/producers"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig("ledger_processor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg)
	log.Info("Starting ledger processor", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := runProcessor(ctx, cfg, log); err != nil {
		log.Error("Ledger processor stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("Ledger processor stopped")
}

// runProcessor consumes funding events and projects the outbox until ctx is cancelled.
// Teardown runs in reverse order of construction: the ops listener, then the poller,
// then the consumer so nothing new reaches the worker pool before it drains.
func runProcessor(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
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
	collector := metrics.NewCollector("wallet_ledger")
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

	dlqProducer, err := producers.NewDLQProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return err
	}
	// a nil *DLQProducer must not become a non-nil interface
	var dlq producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlq = dlqProducer
		release = append(release, func(context.Context) error { return dlqProducer.Close() })
	} else {
		log.Warn("No DLQ topic configured, poison funding events will block their partition")
	}

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	fundingService := components.CreateFundingService(
		log,
		cfg,
		postgresDB.Pool(),
		postgres.NewWalletRepository(log, postgresDB),
		postgres.NewTransactionRepository(log, postgresDB),
		outboxRepo,
		paystack.NewClient(log.With("component", "paystack"), cfg.Paystack, collector),
		collector,
	)
	if pooled, ok := fundingService.(*service.WorkerPoolFundingService); ok {
		release = append(release, pooled.Drain)
	}

	eventHandler := consumer.NewFundingEventHandler(log.With("component", "funding_event_handler"), fundingService, dlq)
	kafkaConsumer := consumers.NewKafkaConsumer(ctx, log, &cfg.Kafka, eventHandler.HandleFailure)
	release = append(release, func(context.Context) error { return kafkaConsumer.Close() })

	log.Info("Starting Kafka consumer", "topic", cfg.Kafka.FundingTopic, "group", cfg.Kafka.ConsumerGroup)
	if err := kafkaConsumer.Subscribe(ctx, eventHandler.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", cfg.Kafka.FundingTopic, err)
	}

	projector := outbox_poller.NewLedgerProjector(mongo.NewLedgerRepository(log, mongoDB.Database()), collector, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, postgresDB.Pool(), outboxRepo, projector, log)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Start(ctx)
	}()
	release = append(release, func(shutdownCtx context.Context) error {
		select {
		case <-pollerDone:
			return nil
		case <-shutdownCtx.Done():
			return fmt.Errorf("outbox poller did not stop: %w", shutdownCtx.Err())
		}
	})

	checks := map[string]metrics.Check{
		"postgres": postgresDB.Ping,
		"mongodb":  mongoDB.Ping,
	}
	opsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           opsMux(registry, checks),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}
	release = append(release, opsServer.Shutdown)

	failed := make(chan error, 1)
	go func() {
		log.Info("Starting ops server", "port", cfg.Server.Port)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- fmt.Errorf("ops server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
		return nil
	case err := <-failed:
		return err
	}
}

// opsMux serves /metrics and /health for the processor, which has no public API.
func opsMux(registry *prometheus.Registry, checks map[string]metrics.Check) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.Handle("/health", metrics.HealthHandler(2*time.Second, checks))
	return mux
}
