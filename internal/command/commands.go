package command

import (
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
)

// Order Commands

// PlaceOrder submits the final cart lines. CustomerID is set when the
// caller is signed in; otherwise the customer is found or created from
// Contact.
type PlaceOrder struct {
	CustomerID   string        `json:"customer_id,omitempty"`
	Lines        []cart.Line   `json:"lines"`
	Contact      order.Contact `json:"contact"`
	PickupTime   *time.Time    `json:"pickup_time,omitempty"`
	PaymentToken string        `json:"payment_token,omitempty"`
	TableNumber  string        `json:"table_number,omitempty"`
}

// CancelOrder cancels an order. CustomerID, when set, must own the order.
type CancelOrder struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id,omitempty"`
	Reason     string `json:"reason"`
}

type MarkOrderReady struct {
	OrderID string `json:"order_id"`
}

type CollectOrder struct {
	OrderID string `json:"order_id"`
}

// Reservation Commands
type RequestReservation struct {
	RestaurantID string    `json:"restaurant_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PartySize    int       `json:"party_size"`
	Time         time.Time `json:"time"`
}

type ConfirmReservation struct {
	ReservationID string `json:"reservation_id"`
}

type DeclineReservation struct {
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason,omitempty"`
}
