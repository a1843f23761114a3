package api

import (
	"errors"
	"net/http"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/domain/hours"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/payment"
)

var (
	errInvalidRequest = errors.New("invalid request body")
	errInvalidDate    = errors.New("date must be YYYY-MM-DD")
	errInvalidTime    = errors.New("time must be RFC 3339")
	errQuantityNeeded = errors.New("quantity is required")
)

// errorStatuses maps domain errors to HTTP status codes. The first match
// wins, so wrapped errors resolve to their sentinel.
var errorStatuses = []struct {
	err    error
	status int
}{
	{errInvalidRequest, http.StatusBadRequest},
	{errInvalidDate, http.StatusBadRequest},
	{errInvalidTime, http.StatusBadRequest},
	{errQuantityNeeded, http.StatusBadRequest},

	{cart.ErrSessionRequired, http.StatusBadRequest},
	{cart.ErrNoPendingSwitch, http.StatusConflict},

	{catalog.ErrRestaurantNotFound, http.StatusNotFound},
	{catalog.ErrMenuItemNotFound, http.StatusNotFound},
	{catalog.ErrItemUnavailable, http.StatusConflict},
	{catalog.ErrUnknownChoice, http.StatusBadRequest},
	{catalog.ErrSelectionOutOfRange, http.StatusBadRequest},

	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrEmptyOrder, http.StatusBadRequest},
	{order.ErrInvalidItem, http.StatusBadRequest},
	{order.ErrRestaurantMissing, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusConflict},
	{order.ErrOrderAlreadyPaid, http.StatusConflict},
	{order.ErrOrderCollected, http.StatusConflict},
	{order.ErrOrderCancelled, http.StatusConflict},

	{command.ErrMixedRestaurants, http.StatusBadRequest},
	{command.ErrPickupInPast, http.StatusUnprocessableEntity},
	{command.ErrTableOrderingDisabled, http.StatusUnprocessableEntity},
	{command.ErrNotOrderOwner, http.StatusForbidden},

	{customer.ErrCustomerNotFound, http.StatusNotFound},
	{customer.ErrInvalidEmail, http.StatusBadRequest},
	{customer.ErrInvalidName, http.StatusBadRequest},
	{customer.ErrEmailTaken, http.StatusConflict},
	{customer.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrPasswordTooShort, http.StatusBadRequest},
	{auth.ErrPasswordTooLong, http.StatusBadRequest},

	{reservation.ErrReservationNotFound, http.StatusNotFound},
	{reservation.ErrReservationsDisabled, http.StatusUnprocessableEntity},
	{reservation.ErrRestaurantClosed, http.StatusUnprocessableEntity},
	{reservation.ErrInvalidPartySize, http.StatusBadRequest},
	{reservation.ErrTimeInPast, http.StatusBadRequest},
	{reservation.ErrContactRequired, http.StatusBadRequest},
	{reservation.ErrAlreadyDecided, http.StatusConflict},

	{payment.ErrPaymentDeclined, http.StatusPaymentRequired},
	{payment.ErrPaymentRequired, http.StatusPaymentRequired},
	{payment.ErrPaymentNotSupported, http.StatusBadRequest},
	{payment.ErrProviderUnavailable, http.StatusServiceUnavailable},
	{payment.ErrPaymentNotConfigured, http.StatusServiceUnavailable},
}

// errorResponse resolves err to a status code and a client-safe message.
// Unknown errors become a bare 500.
func errorResponse(err error) (int, string) {
	if errors.Is(err, hours.ErrClosedOnDay) || errors.Is(err, hours.ErrOutsideHours) {
		return http.StatusUnprocessableEntity, hours.ClosedMessage
	}

	var validationErr *cart.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, err.Error()
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
