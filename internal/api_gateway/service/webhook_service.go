package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/domain/shared"
	"github.com/money-transfer-wallet/internal/platform/cache"
	"github.com/money-transfer-wallet/internal/platform/messaging/producers"
	"github.com/money-transfer-wallet/internal/platform/paystack"
)

// SignatureValidator checks a webhook body against the provider signature header.
// Satisfied by *paystack.Client.
type SignatureValidator interface {
	ValidateSignature(body []byte, signature string) bool
}

// WebhookServiceImpl turns authenticated webhooks into funding events.
// Crediting happens in the ledger processor; this service only queues.
type WebhookServiceImpl struct {
	validator SignatureValidator
	deduper   cache.Deduper
	producer  producers.MessagePublisher
	logger    *slog.Logger
}

func NewWebhookService(logger *slog.Logger, validator SignatureValidator, deduper cache.Deduper, producer producers.MessagePublisher) WebhookService {
	if deduper == nil {
		deduper = cache.Nop{}
	}
	return &WebhookServiceImpl{
		validator: validator,
		deduper:   deduper,
		producer:  producer,
		logger:    logger,
	}
}

type webhookHeader struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

func (s *WebhookServiceImpl) AcceptPaystackEvent(ctx context.Context, body []byte, signature, correlationID string) (bool, error) {
	logger := s.logger.With("correlation_id", correlationID)

	if !s.validator.ValidateSignature(body, signature) {
		logger.Warn("Rejected webhook with invalid signature", "header", paystack.SignatureHeader)
		return false, nil
	}

	var hdr webhookHeader
	if err := json.Unmarshal(body, &hdr); err != nil || hdr.Data.Reference == "" {
		return false, ErrInvalidWebhook
	}
	ref := hdr.Data.Reference
	logger = logger.With("reference", ref, "event", hdr.Event)

	claimed, err := s.deduper.Claim(ctx, ref)
	if err != nil {
		// the unique reference in Postgres still guards against double credit
		logger.Warn("Webhook de-duplication unavailable", "error", err)
		claimed = true
	}
	if !claimed {
		logger.Info("Webhook already queued")
		return true, nil
	}

	event := &shared.FundingEvent{
		Reference:     ref,
		Event:         hdr.Event,
		Payload:       json.RawMessage(body),
		CorrelationID: correlationID,
		ReceivedAt:    time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, ref, event); err != nil {
		if relErr := s.deduper.Release(ctx, ref); relErr != nil {
			logger.Warn("Failed to release webhook claim", "error", relErr)
		}
		logger.Error("Failed to publish funding event", "error", err)
		return false, fmt.Errorf("%w: %w", ErrPublishRejected, err)
	}

	logger.Info("Funding event queued")
	return true, nil
}
