package readmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collections in the read store.
const (
	CollectionCustomers    = "customers"
	CollectionOrders       = "orders"
	CollectionReservations = "reservations"
)

// CustomerReadModel is the read model for customers
type CustomerReadModel struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Registered bool      `json:"registered"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderItemReadModel represents an item in an order. Options are rendered
// as "Size: Large".
type OrderItemReadModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Options   []string        `json:"options,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID           string               `json:"id"`
	CustomerID   string               `json:"customer_id"`
	RestaurantID string               `json:"restaurant_id"`
	Items        []OrderItemReadModel `json:"items"`
	Total        decimal.Decimal      `json:"total"`
	Currency     string               `json:"currency"`
	ContactName  string               `json:"contact_name"`
	ContactEmail string               `json:"contact_email"`
	ContactPhone string               `json:"contact_phone,omitempty"`
	PickupTime   *time.Time           `json:"pickup_time,omitempty"`
	TableNumber  string               `json:"table_number,omitempty"`
	PaymentID    string               `json:"payment_id,omitempty"`
	Status       string               `json:"status"`
	CancelReason string               `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ReservationReadModel is the read model for table reservations
type ReservationReadModel struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PartySize    int       `json:"party_size"`
	Time         time.Time `json:"time"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
