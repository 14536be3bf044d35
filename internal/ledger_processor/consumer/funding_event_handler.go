package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/money-transfer-wallet/internal/domain/shared"
	"github.com/money-transfer-wallet/internal/ledger_processor/service"
	"github.com/money-transfer-wallet/internal/logger"
	"github.com/money-transfer-wallet/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

// FundingEventHandler feeds funding events from Kafka to the funding processor.
type FundingEventHandler struct {
	processor service.FundingProcessor
	dlq       producers.DeadLetterPublisher
	logger    *slog.Logger
}

func NewFundingEventHandler(
	logger *slog.Logger,
	processor service.FundingProcessor,
	dlq producers.DeadLetterPublisher,
) *FundingEventHandler {
	return &FundingEventHandler{
		processor: processor,
		dlq:       dlq,
		logger:    logger,
	}
}

// HandleMessage returns an error only when the event should be redelivered.
func (h *FundingEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.FundingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.park(ctx, key, value, fmt.Sprintf("undecodable funding event: %s", err))
	}
	if err := event.Validate(); err != nil {
		return h.park(ctx, key, value, err.Error())
	}

	log := h.logger.With("reference", event.Reference)
	if event.CorrelationID != "" {
		log = log.With("correlation_id", event.CorrelationID)
	}
	ctx = logger.WithContext(ctx, log)

	applied, err := h.processor.ProcessFundingEvent(ctx, event.Payload)
	if err != nil {
		log.Error("Failed to process funding event", "error", err)
		return fmt.Errorf("processing funding event %s failed: %w", event.Reference, err)
	}

	log.Info("Funding event handled", "event", event.Event, "applied", applied)
	return nil
}

// HandleFailure parks a message the consumer gave up redelivering.
func (h *FundingEventHandler) HandleFailure(ctx context.Context, msg kafka.Message, cause error) error {
	return h.park(ctx, msg.Key, msg.Value, fmt.Sprintf("redelivery exhausted: %s", cause))
}

// park sends value to the DLQ. Without a DLQ the error is returned so the message is not committed.
func (h *FundingEventHandler) park(ctx context.Context, key, value []byte, reason string) error {
	h.logger.Error("Parking funding event", "key", string(key), "reason", reason)
	if h.dlq == nil {
		return fmt.Errorf("cannot park funding event %s: %s", string(key), reason)
	}
	if err := h.dlq.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		return fmt.Errorf("failed to park funding event %s: %w", string(key), err)
	}
	return nil
}
