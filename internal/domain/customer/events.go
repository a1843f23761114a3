package customer

import "time"

const (
	EventCustomerCreated    = "CustomerCreated"
	EventCustomerRegistered = "CustomerRegistered"
)

// CustomerCreated is emitted the first time an email places an order or
// requests a table.
type CustomerCreated struct {
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CustomerRegistered is emitted when a customer sets a password. A guest
// who ordered before keeps the same customer id.
type CustomerRegistered struct {
	CustomerID   string    `json:"customer_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	RegisteredAt time.Time `json:"registered_at"`
}
