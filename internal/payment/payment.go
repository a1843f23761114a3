package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentDeclined      = errors.New("payment was declined")
	ErrProviderUnavailable  = errors.New("payment provider is unavailable")
	ErrPaymentNotSupported  = errors.New("restaurant does not accept online payment")
	ErrPaymentRequired      = errors.New("restaurant requires online payment")
	ErrPaymentNotConfigured = errors.New("online payment is not configured")
)

// Capability says whether a restaurant takes online payment.
type Capability string

const (
	CapabilityNone     Capability = "none"
	CapabilityOptional Capability = "optional"
	CapabilityRequired Capability = "required"
)

// Check applies a restaurant's capability to the presence of a payment
// token. An unset capability behaves like CapabilityNone.
func (c Capability) Check(token string) error {
	switch c {
	case CapabilityRequired:
		if token == "" {
			return ErrPaymentRequired
		}
	case CapabilityOptional:
	default:
		if token != "" {
			return ErrPaymentNotSupported
		}
	}
	return nil
}

// Confirmation is the provider's record of a captured payment.
type Confirmation struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
}

// Verifier confirms a client-side payment token for an amount.
type Verifier interface {
	Confirm(ctx context.Context, token string, amount decimal.Decimal, currency string) (*Confirmation, error)
}

// Disabled is the Verifier used when no provider is configured.
type Disabled struct{}

func (Disabled) Confirm(ctx context.Context, token string, amount decimal.Decimal, currency string) (*Confirmation, error) {
	return nil, ErrPaymentNotConfigured
}
