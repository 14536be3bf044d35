package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/segmentio/kafka-go"
)

// FundingEventProducer hands verified provider webhooks to the ledger processor.
// Publish only returns once Kafka holds the event, so the webhook is never acked early.
type FundingEventProducer struct {
	out *topicWriter
}

func NewFundingEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*FundingEventProducer, error) {
	if cfg.FundingTopic == "" {
		return nil, errors.New("kafka funding topic is not configured")
	}
	// Hash keeps every delivery of one reference on one partition, in order.
	out, err := dialTopicWriter(logger, cfg, cfg.FundingTopic, &kafka.Hash{})
	if err != nil {
		return nil, fmt.Errorf("failed to set up funding producer: %w", err)
	}
	return &FundingEventProducer{out: out}, nil
}

func (p *FundingEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal funding event: %w", err)
	}
	if err := p.out.write(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		return err
	}
	p.out.logger.Debug("Published funding event", "key", key)
	return nil
}

func (p *FundingEventProducer) Close() error {
	return p.out.close()
}
