package cache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewBoolResult(args.Bool(0), args.Error(1))
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRedisDeduper_Claim(t *testing.T) {
	ctx := context.Background()
	ttl := 24 * time.Hour

	tests := []struct {
		name      string
		setupMock func(m *MockRedis)
		want      bool
		wantErr   bool
	}{
		{
			name: "first delivery",
			setupMock: func(m *MockRedis) {
				m.On("SetNX", ctx, "webhook:paystack:ref-1", mock.AnythingOfType("string"), ttl).Return(true, nil).Once()
			},
			want: true,
		},
		{
			name: "repeat delivery",
			setupMock: func(m *MockRedis) {
				m.On("SetNX", ctx, "webhook:paystack:ref-1", mock.Anything, ttl).Return(false, nil).Once()
			},
			want: false,
		},
		{
			name: "redis error",
			setupMock: func(m *MockRedis) {
				m.On("SetNX", ctx, mock.Anything, mock.Anything, ttl).Return(false, errors.New("connection refused")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockRedis)
			tt.setupMock(m)
			d := NewRedisDeduper(m, ttl, testLogger())

			got, err := d.Claim(ctx, "ref-1")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			m.AssertExpectations(t)
		})
	}
}

func TestRedisDeduper_Release(t *testing.T) {
	ctx := context.Background()
	m := new(MockRedis)
	m.On("Del", ctx, []string{"webhook:paystack:ref-1"}).Return(1, nil).Once()
	m.On("Del", ctx, []string{"webhook:paystack:ref-2"}).Return(0, errors.New("timeout")).Once()

	d := NewRedisDeduper(m, time.Hour, testLogger())
	assert.NoError(t, d.Release(ctx, "ref-1"))
	assert.Error(t, d.Release(ctx, "ref-2"))
	m.AssertExpectations(t)
}

func TestNop(t *testing.T) {
	ok, err := Nop{}.Claim(context.Background(), "x")
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, Nop{}.Release(context.Background(), "x"))
}
