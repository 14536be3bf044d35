// Package paystack is a minimal client for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/money-transfer-wallet/internal/platform/metrics"
	"github.com/sony/gobreaker"
)

const breakerName = "paystack"

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("paystack is unavailable")

// APIError is a non-2xx answer from Paystack.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack returned %d: %s", e.StatusCode, e.Message)
}

// Client calls Paystack through a circuit breaker. Only transport errors and 5xx answers
// count against the breaker.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger, cfg config.PaystackConfig, recorder metrics.Recorder) *Client {
	logger = logger.With("component", "paystack")
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	maxFailures := cfg.BreakerMaxFailures
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			recorder.SetBreakerState(name, breakerGauge(to))
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// envelope is the shape of every Paystack response.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode paystack request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Paystack request failed", "path", path, "error", err)
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read paystack response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("Paystack returned an error", "path", path, "status", resp.StatusCode, "message", msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode paystack response: %w", decodeErr)
	}
	if !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode paystack data: %w", err)
		}
	}
	return nil
}

// VerifyTransaction asks Paystack for the authoritative state of a charge.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	var tx Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// InitializeTransaction starts a hosted checkout for amountMinor (kobo) on behalf of userID.
func (c *Client) InitializeTransaction(ctx context.Context, in InitializeRequest) (*Authorization, error) {
	body := map[string]any{
		"email":  in.Email,
		"amount": in.AmountMinor,
		"metadata": map[string]string{
			"user_id":          in.UserID,
			"tokenized_charge": "false",
		},
	}
	if in.CallbackURL != "" {
		body["callback_url"] = in.CallbackURL
	}

	var auth Authorization
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// ValidateSignature checks a webhook body against its x-paystack-signature header.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	return ValidateSignature(body, signature, c.secretKey)
}
