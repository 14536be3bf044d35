package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/domain/wallet"
	"github.com/money-transfer-wallet/internal/platform/paystack"
	"github.com/money-transfer-wallet/internal/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var mockCtx = mock.Anything

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorBody `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *PageMeta  `json:"meta,omitempty"`
}

// newRouter authenticates every request as userID, or not at all when userID is nil
func newRouter(userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, req transfer.Request) (*transfer.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Result), args.Error(1)
}

type MockFundingService struct {
	mock.Mock
}

func (m *MockFundingService) InitializeFunding(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*paystack.Authorization, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Authorization), args.Error(1)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) AcceptPaystackEvent(ctx context.Context, body []byte, signature, correlationID string) (bool, error) {
	args := m.Called(ctx, body, signature, correlationID)
	return args.Bool(0), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) ListWallets(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}
