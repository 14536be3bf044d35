package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessagePublisher is what the gateway queues funding webhooks through.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks messages the ledger processor gave up on.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is satisfied by *kafka.Writer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// topicWriter is a synchronous, all-replica-acked writer pinned to one topic.
type topicWriter struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// dialTopicWriter makes sure topic exists before handing back a writer for it.
func dialTopicWriter(logger *slog.Logger, cfg *config.KafkaConfig, topic string, balancer kafka.Balancer) (*topicWriter, error) {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka at %s: %w", cfg.Brokers, err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, err
	}

	return &topicWriter{
		logger: logger.With("topic", topic),
		topic:  topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers),
			Topic:        topic,
			Balancer:     balancer,
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: cfg.MaxWait,
		},
	}, nil
}

func (w *topicWriter) write(ctx context.Context, msg kafka.Message) error {
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.logger.Error("Kafka write failed", "key", string(msg.Key), "error", err)
		return fmt.Errorf("failed to write to %s: %w", w.topic, err)
	}
	return nil
}

func (w *topicWriter) close() error {
	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %s: %w", w.topic, err)
	}
	w.logger.Info("Closed kafka writer")
	return nil
}
