package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/handler"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Services is everything the handlers call into.
type Services struct {
	Transfer service.TransferService
	Funding  service.FundingService
	Webhook  service.WebhookService
	Wallet   service.WalletService

	// Health pings dependencies for GET /health; nil reports ok with no dependencies.
	Health map[string]metrics.Check
}

const healthTimeout = 2 * time.Second

// Server owns the gateway's listener.
type Server struct {
	logger *slog.Logger
	router *gin.Engine
	http   *http.Server
}

func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	services Services,
	tokens middleware.TokenVerifier,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register request validators: %w", err)
	}

	router := gin.New()
	setupRouter(log, router, handlers{
		transfer: handler.NewTransferHandler(log, services.Transfer),
		funding:  handler.NewFundingHandler(log, services.Funding),
		webhook:  handler.NewWebhookHandler(log, services.Webhook),
		wallet:   handler.NewWalletHandler(log, services.Wallet),
		health:   metrics.HealthHandler(healthTimeout, services.Health),
	}, tokens, gatherer)

	return &Server{
		logger: log,
		router: router,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the listener fails or Stop is called. A clean stop returns nil.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http listener: %w", err)
}

// Stop waits for in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Draining HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to drain HTTP server: %w", err)
	}
	return nil
}
