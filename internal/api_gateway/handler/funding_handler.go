package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/domain/user"
	"github.com/money-transfer-wallet/internal/platform/paystack"
)

// FundingHandler starts card fundings
type FundingHandler struct {
	fundingService service.FundingService
	logger         *slog.Logger
}

func NewFundingHandler(logger *slog.Logger, fundingService service.FundingService) *FundingHandler {
	return &FundingHandler{
		fundingService: fundingService,
		logger:         logger,
	}
}

// Initialize returns the provider checkout for the requested amount
func (h *FundingHandler) Initialize(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req FundingInitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount")
		return
	}

	auth, err := h.fundingService.InitializeFunding(c.Request.Context(), userID, amount)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAmountTooSmall), errors.Is(err, service.ErrUnverifiedUser):
		RespondBadRequest(c, err.Error())
		return
	case errors.Is(err, user.ErrUserNotFound{}):
		RespondNotFound(c, "User not found")
		return
	case errors.Is(err, paystack.ErrUnavailable):
		RespondServiceUnavailable(c, "Payment provider is unavailable, please retry later")
		return
	default:
		h.logger.Error("Failed to initialize funding", "user_id", userID, "error", err)
		RespondInternalError(c, err)
		return
	}

	RespondOK(c, FundingInitializeResponse{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
	})
}
