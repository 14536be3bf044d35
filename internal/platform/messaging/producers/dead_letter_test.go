package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var parkedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return parkedAt }

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	ctx := context.Background()

	t.Run("wraps original message", func(t *testing.T) {
		w := new(MockKafkaWriter)
		p := &DLQProducer{out: newTestWriter(w, "funding_events_dlq"), now: fixedNow}
		original := []byte(`{"reference":"ref-9"}`)

		w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != "ref-9" {
				return false
			}
			var env dlqEnvelope
			if err := json.Unmarshal(msgs[0].Value, &env); err != nil {
				return false
			}
			return env.OriginalValue == string(original) &&
				env.Reason == "undecodable" &&
				env.ParkedAt.Equal(parkedAt) &&
				msgs[0].Headers[0].Key == reasonHeader &&
				string(msgs[0].Headers[0].Value) == "undecodable"
		})).Return(nil).Once()

		require.NoError(t, p.PublishToDLQ(ctx, "ref-9", original, "undecodable"))
		w.AssertExpectations(t)
	})

	t.Run("writer error", func(t *testing.T) {
		w := new(MockKafkaWriter)
		p := &DLQProducer{out: newTestWriter(w, "funding_events_dlq"), now: fixedNow}
		boom := errors.New("broker down")
		w.On("WriteMessages", ctx, mock.Anything).Return(boom).Once()

		assert.ErrorIs(t, p.PublishToDLQ(ctx, "k", []byte("v"), "r"), boom)
	})

	t.Run("disabled", func(t *testing.T) {
		var p *DLQProducer
		assert.ErrorIs(t, p.PublishToDLQ(ctx, "k", []byte("v"), "r"), ErrDLQDisabled)
		assert.NoError(t, p.Close())
	})
}

func TestDLQProducer_Close(t *testing.T) {
	w := new(MockKafkaWriter)
	p := &DLQProducer{out: newTestWriter(w, "funding_events_dlq"), now: fixedNow}
	boom := errors.New("close failed")
	w.On("Close").Return(boom).Once()

	assert.ErrorIs(t, p.Close(), boom)
	w.AssertExpectations(t)
}
