package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const statusSucceeded = "succeeded"

// errProvider marks responses that count against the circuit breaker.
var errProvider = errors.New("payment provider error")

type confirmRequest struct {
	Token    string `json:"token"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type confirmResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HTTPVerifier confirms payments against the provider's REST API. Calls go
// through a circuit breaker that opens after repeated provider failures.
// Declines do not count as failures.
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Confirmation]
	logger  *zap.Logger
}

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

var DefaultBreakerSettings = BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}

func NewHTTPVerifier(baseURL, apiKey string, client *http.Client, settings BreakerSettings, logger *zap.Logger) *HTTPVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("payment")

	v := &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
	v.breaker = gobreaker.NewCircuitBreaker[*Confirmation](gobreaker.Settings{
		Name:    "payment-provider",
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPaymentDeclined) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return v
}

// Confirm captures token for amount. It returns ErrPaymentDeclined when the
// provider refuses and ErrProviderUnavailable when it cannot be reached or
// the breaker is open.
func (v *HTTPVerifier) Confirm(ctx context.Context, token string, amount decimal.Decimal, currency string) (*Confirmation, error) {
	conf, err := v.breaker.Execute(func() (*Confirmation, error) {
		return v.confirm(ctx, token, amount, currency)
	})
	switch {
	case err == nil:
		return conf, nil
	case errors.Is(err, ErrPaymentDeclined):
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	default:
		v.logger.Error("payment confirmation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

func (v *HTTPVerifier) confirm(ctx context.Context, token string, amount decimal.Decimal, currency string) (*Confirmation, error) {
	body, err := json.Marshal(confirmRequest{Token: token, Amount: amount.StringFixed(2), Currency: currency})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", errProvider, resp.StatusCode)
	}

	var out confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", errProvider, err)
	}

	if resp.StatusCode == http.StatusPaymentRequired || (resp.StatusCode < 300 && out.Status != statusSucceeded) {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, out.Reason)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", errProvider, resp.StatusCode)
	}

	return &Confirmation{ID: out.ID, Amount: amount, Currency: currency}, nil
}
