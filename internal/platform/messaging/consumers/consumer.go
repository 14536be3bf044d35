package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// FailureHandler receives a message whose handler kept failing. Returning nil lets the offset commit.
type FailureHandler func(ctx context.Context, msg kafka.Message, cause error) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader is the part of kafka.Reader the consumer uses
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultMaxDeliveries = 5
	defaultRetryBackoff  = time.Second
)

// KafkaConsumer processes one message at a time per reader and commits only after the handler
// succeeded or the failure handler took the message.
type KafkaConsumer struct {
	reader        KafkaReader
	topic         string
	groupID       string
	maxDeliveries int
	retryBackoff  time.Duration
	onFailure     FailureHandler
	logger        *slog.Logger
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, onFailure FailureHandler) *KafkaConsumer {
	return &KafkaConsumer{
		logger:        logger,
		topic:         cfg.FundingTopic,
		groupID:       cfg.ConsumerGroup,
		maxDeliveries: defaultMaxDeliveries,
		retryBackoff:  defaultRetryBackoff,
		onFailure:     onFailure,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.FundingTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Subscribe starts the fetch loop in the background. It stops when ctx is cancelled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("kafka reader is not initialized")
	}
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	go c.run(ctx, handler)
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "error", err)
			if !sleep(ctx, c.retryBackoff) {
				return
			}
			continue
		}

		if !c.deliver(ctx, msg, handler) {
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// deliver runs handler until it succeeds or deliveries run out, then hands the message to onFailure.
// It returns false when the consumer is shutting down and msg must not be committed.
func (c *KafkaConsumer) deliver(ctx context.Context, msg kafka.Message, handler MessageHandler) bool {
	var err error
	for attempt := 1; attempt <= c.maxDeliveries; attempt++ {
		if err = handler(ctx, msg.Key, msg.Value); err == nil {
			return true
		}
		c.logger.Error("Failed to process message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"error", err,
		)
		if ctx.Err() != nil {
			return false
		}
		if attempt < c.maxDeliveries && !sleep(ctx, time.Duration(attempt)*c.retryBackoff) {
			return false
		}
	}

	if c.onFailure == nil {
		c.logger.Error("Dropping message after repeated failures", "key", string(msg.Key), "offset", msg.Offset)
		return true
	}
	for {
		ferr := c.onFailure(ctx, msg, err)
		if ferr == nil {
			return true
		}
		c.logger.Error("Failure handler rejected message", "key", string(msg.Key), "error", ferr)
		if !sleep(ctx, c.retryBackoff) {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
