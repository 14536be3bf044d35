package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/api_gateway/service"
	"github.com/money-transfer-wallet/internal/platform/persistence"
	"github.com/money-transfer-wallet/internal/transfer"
)

// TransferHandler handles peer-to-peer transfers
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Create debits the caller and credits the receiver, returning both records
func (h *TransferHandler) Create(c *gin.Context) {
	senderID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid transfer request", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		RespondBadRequest(c, "Invalid receiver ID")
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount")
		return
	}

	res, err := h.transferService.Transfer(c.Request.Context(), transfer.Request{
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Amount:        amount,
		Narration:     req.Narration,
		Pin:           req.Pin,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondTransferError(c, err)
		return
	}

	RespondOK(c, TransferResponse{
		Debit:  mapRecordToResponse(res.Debit),
		Credit: mapRecordToResponse(res.Credit),
	})
}

func (h *TransferHandler) respondTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transfer.ErrUserNotFound):
		RespondNotFound(c, err.Error())
	case errors.Is(err, transfer.ErrPersistenceFailure) && persistence.IsRetryable(err):
		RespondConflict(c, "Transfer conflicted with another operation, please retry")
	case errors.Is(err, transfer.ErrPersistenceFailure):
		h.logger.Error("Transfer failed", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c, err)
	default:
		// every other transfer error is a business rejection
		RespondBadRequest(c, err.Error())
	}
}
