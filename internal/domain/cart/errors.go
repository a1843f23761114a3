package cart

import (
	"errors"
	"fmt"
)

var (
	ErrRestaurantRequired = errors.New("restaurant_id is required")
	ErrProductRequired    = errors.New("product id is required")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 99")
	ErrNoPendingSwitch    = errors.New("no restaurant switch is awaiting confirmation")
	ErrSessionRequired    = errors.New("session id is required")
	ErrCorruptRecord      = errors.New("stored cart record is invalid")
)

// ValidationError reports malformed input to AddItem. It signals an upstream
// programming error (bad product data), not a user-facing condition.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cart validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
