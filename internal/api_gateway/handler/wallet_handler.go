package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/transaction"
)

// WalletHandler serves the caller's wallets and history
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	wallets, err := h.walletService.ListWallets(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list wallets", "user_id", userID, "error", err)
		RespondInternalError(c, err)
		return
	}

	out := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, mapWalletToResponse(w))
	}
	RespondOK(c, out)
}

// Transactions pages through the ledger read model, so a record shows up only
// after the outbox poller has projected it.
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var params HistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := ledger.HistoryFilter{
		UserID:    userID,
		Category:  transaction.Category(params.Category),
		Direction: transaction.Direction(params.Direction),
	}
	entries, total, err := h.walletService.ListTransactions(c.Request.Context(), filter, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "user_id", userID, "error", err)
		RespondInternalError(c, err)
		return
	}

	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapLedgerEntryToResponse(e))
	}
	RespondWithPaginatedData(c, http.StatusOK, out, params.Page, params.PerPage, int(total))
}
