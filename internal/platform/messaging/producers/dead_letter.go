package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/segmentio/kafka-go"
)

var ErrDLQDisabled = errors.New("dead letter queue is disabled")

const reasonHeader = "dlq-reason"

// DLQProducer is safe to call through a nil pointer; it then reports ErrDLQDisabled.
type DLQProducer struct {
	out *topicWriter
	now func() time.Time
}

type dlqEnvelope struct {
	OriginalKey   string    `json:"original_key"`
	OriginalValue string    `json:"original_value"`
	Reason        string    `json:"dlq_reason"`
	ParkedAt      time.Time `json:"parked_at"`
}

// NewDLQProducer returns a nil producer when no DLQ topic is configured.
func NewDLQProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, dead lettering disabled")
		return nil, nil
	}
	out, err := dialTopicWriter(logger, cfg, cfg.DLQTopic, &kafka.LeastBytes{})
	if err != nil {
		return nil, fmt.Errorf("failed to set up DLQ producer: %w", err)
	}
	return &DLQProducer{out: out, now: time.Now}, nil
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.out == nil {
		return ErrDLQDisabled
	}

	value, err := json.Marshal(dlqEnvelope{
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		Reason:        reason,
		ParkedAt:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	err = p.out.write(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: reasonHeader, Value: []byte(reason)}},
	})
	if err != nil {
		return err
	}
	p.out.logger.Warn("Parked message on DLQ", "key", key, "reason", reason)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.out == nil {
		return nil
	}
	return p.out.close()
}
