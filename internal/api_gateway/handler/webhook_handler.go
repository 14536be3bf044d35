package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/platform/paystack"
)

// maxWebhookBody caps what is read before the signature is checked.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

func NewWebhookHandler(logger *slog.Logger, webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Paystack answers 200 for bad signatures too, so the provider does not keep retrying forged calls.
// Only a queueing failure yields 5xx, which makes the provider redeliver.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("Rejected oversized webhook", "limit_bytes", tooLarge.Limit)
			RespondPayloadTooLarge(c, "Body too large")
			return
		}
		RespondBadRequest(c, "Unreadable body")
		return
	}

	accepted, err := h.webhookService.AcceptPaystackEvent(
		c.Request.Context(),
		body,
		c.GetHeader(paystack.SignatureHeader),
		middleware.GetCorrelationID(c),
	)
	switch {
	case err == nil:
		RespondOK(c, WebhookResponse{Accepted: accepted})
	case errors.Is(err, service.ErrInvalidWebhook):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Failed to accept webhook", "error", err)
		RespondInternalError(c, err)
	}
}
