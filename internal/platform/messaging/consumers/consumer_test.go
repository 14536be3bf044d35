package consumers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	done      chan struct{}
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, done: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.queue) == 0 {
		select {
		case <-r.done:
		default:
			close(r.done)
		}
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) Committed() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kafka.Message(nil), r.committed...)
}

func newTestConsumer(r KafkaReader, onFailure FailureHandler) *KafkaConsumer {
	return &KafkaConsumer{
		reader:        r,
		topic:         "funding_events",
		groupID:       "test",
		maxDeliveries: 3,
		retryBackoff:  0,
		onFailure:     onFailure,
		logger:        testLogger(),
	}
}

func waitDone(t *testing.T, r *fakeReader) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not commit in time")
	}
}

func TestKafkaConsumer_CommitsAfterSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newFakeReader(
		kafka.Message{Key: []byte("a"), Value: []byte("1"), Offset: 1},
		kafka.Message{Key: []byte("b"), Value: []byte("2"), Offset: 2},
	)
	var handled []string
	var mu sync.Mutex
	c := newTestConsumer(r, nil)

	require.NoError(t, c.Subscribe(ctx, func(_ context.Context, key, _ []byte) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, string(key))
		return nil
	}))
	waitDone(t, r)

	mu.Lock()
	assert.Equal(t, []string{"a", "b"}, handled)
	mu.Unlock()
	assert.Len(t, r.Committed(), 2)
}

func TestKafkaConsumer_RedeliversThenSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newFakeReader(kafka.Message{Key: []byte("a"), Offset: 7})
	calls := 0
	c := newTestConsumer(r, func(context.Context, kafka.Message, error) error {
		t.Error("failure handler must not run")
		return nil
	})

	require.NoError(t, c.Subscribe(ctx, func(context.Context, []byte, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("provider unavailable")
		}
		return nil
	}))
	waitDone(t, r)

	assert.Equal(t, 3, calls)
	assert.Len(t, r.Committed(), 1)
}

func TestKafkaConsumer_HandsExhaustedMessageToFailureHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newFakeReader(kafka.Message{Key: []byte("poison"), Offset: 3})
	boom := errors.New("always fails")
	var parked []string
	var cause error
	c := newTestConsumer(r, func(_ context.Context, msg kafka.Message, err error) error {
		parked = append(parked, string(msg.Key))
		cause = err
		return nil
	})

	require.NoError(t, c.Subscribe(ctx, func(context.Context, []byte, []byte) error { return boom }))
	waitDone(t, r)

	assert.Equal(t, []string{"poison"}, parked)
	assert.ErrorIs(t, cause, boom)
	assert.Len(t, r.Committed(), 1)
}

func TestKafkaConsumer_StopsWithoutCommitOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := newFakeReader(kafka.Message{Key: []byte("a")})
	started := make(chan struct{})
	c := newTestConsumer(r, nil)
	c.retryBackoff = time.Hour

	require.NoError(t, c.Subscribe(ctx, func(context.Context, []byte, []byte) error {
		close(started)
		return errors.New("transient")
	}))
	<-started
	cancel()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, r.Committed())
}

func TestNewKafkaConsumer(t *testing.T) {
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		FundingTopic:  "funding_events",
		ConsumerGroup: "ledger-processor-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	c := NewKafkaConsumer(context.Background(), testLogger(), cfg, nil)
	require.NotNil(t, c.reader)
	assert.Equal(t, "funding_events", c.topic)
	assert.Equal(t, defaultMaxDeliveries, c.maxDeliveries)
	assert.NoError(t, c.Close())
}

func TestKafkaConsumer_SubscribeWithoutReader(t *testing.T) {
	c := &KafkaConsumer{logger: testLogger()}
	assert.Error(t, c.Subscribe(context.Background(), nil))
	assert.NoError(t, c.Close())
}
