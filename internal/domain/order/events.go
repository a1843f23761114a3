package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain/cart"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderPaid      = "OrderPaid"
	EventOrderReady     = "OrderReady"
	EventOrderCollected = "OrderCollected"
	EventOrderCancelled = "OrderCancelled"
)

// Item is a priced snapshot of one cart line.
type Item struct {
	ProductID       string                `json:"product_id"`
	Name            string                `json:"name"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	Quantity        int                   `json:"quantity"`
	SelectedOptions []cart.SelectedOption `json:"selected_options,omitempty"`
}

// Subtotal returns UnitPrice × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsFromCart converts cart lines into order items.
func ItemsFromCart(lines []cart.Line) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{
			ProductID:       line.ProductID,
			Name:            line.Name,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			SelectedOptions: line.SelectedOptions,
		}
	}
	return items
}

// Contact is who the restaurant calls about the order.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type OrderPlaced struct {
	OrderID      string          `json:"order_id"`
	CustomerID   string          `json:"customer_id"`
	RestaurantID string          `json:"restaurant_id"`
	Items        []Item          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Contact      Contact         `json:"contact"`
	PickupTime   *time.Time      `json:"pickup_time,omitempty"`
	TableNumber  string          `json:"table_number,omitempty"`
	PlacedAt     time.Time       `json:"placed_at"`
}

type OrderPaid struct {
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	PaidAt    time.Time `json:"paid_at"`
}

type OrderReady struct {
	OrderID string    `json:"order_id"`
	ReadyAt time.Time `json:"ready_at"`
}

type OrderCollected struct {
	OrderID     string    `json:"order_id"`
	CollectedAt time.Time `json:"collected_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}
