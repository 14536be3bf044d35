package api_gateway

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/handler"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type handlers struct {
	transfer *handler.TransferHandler
	funding  *handler.FundingHandler
	webhook  *handler.WebhookHandler
	wallet   *handler.WalletHandler
	health   http.Handler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	tokens middleware.TokenVerifier,
	gatherer prometheus.Gatherer,
) {
	// Order matters: the request logger needs the correlation id, and recovery
	// logs through the request logger.
	r.Use(
		middleware.CorrelationID(),
		middleware.RequestLogger(logger, "/health", "/metrics"),
		middleware.Recovery(logger),
	)

	v1 := r.Group("/api/v1")
	{
		// Provider callbacks authenticate by signature, not bearer token
		v1.POST("/webhooks/paystack", h.webhook.Paystack)

		authed := v1.Group("", middleware.Auth(tokens))
		{
			authed.POST("/transfers", h.transfer.Create)
			authed.POST("/funding/initialize", h.funding.Initialize)

			wallets := authed.Group("/wallets")
			{
				wallets.GET("", h.wallet.List)
				wallets.GET("/transactions", h.wallet.Transactions)
			}
		}
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	r.GET("/health", gin.WrapH(h.health))
}
