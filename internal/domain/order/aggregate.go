package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/domain/aggregate"
	"github.com/example/storefront/internal/infrastructure/store"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
	StatusCancelled Status = "cancelled"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidItem       = errors.New("order item is invalid")
	ErrRestaurantMissing = errors.New("order must name a restaurant")
	ErrInvalidStatus     = errors.New("invalid order status transition")
	ErrOrderAlreadyPaid  = errors.New("order is already paid")
	ErrOrderCollected    = errors.New("order has already been collected")
	ErrOrderCancelled    = errors.New("order is already cancelled")
)

// validTransitions defines allowed state transitions. Orders paid at the
// counter go straight from pending to ready.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusReady, StatusCancelled},
	StatusPaid:      {StatusReady, StatusCancelled},
	StatusReady:     {StatusCollected},
	StatusCollected: {}, // terminal state
	StatusCancelled: {}, // terminal state
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	for _, s := range validTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusCancelled:
		return ErrOrderCancelled
	case o.Status == StatusCollected:
		return ErrOrderCollected
	case target == StatusPaid && o.PaymentID != "":
		return ErrOrderAlreadyPaid
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

type Order struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	RestaurantID string          `json:"restaurant_id"`
	Items        []Item          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Contact      Contact         `json:"contact"`
	PickupTime   *time.Time      `json:"pickup_time,omitempty"`
	TableNumber  string          `json:"table_number,omitempty"`
	PaymentID    string          `json:"payment_id,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"` // Current event version
}

// Aggregate interface implementation
func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.CustomerID = data.CustomerID
		o.RestaurantID = data.RestaurantID
		o.Items = data.Items
		o.Total = data.Total
		o.Currency = data.Currency
		o.Contact = data.Contact
		o.PickupTime = data.PickupTime
		o.TableNumber = data.TableNumber
		o.Status = StatusPending
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderPaid:
		var data OrderPaid
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusPaid
		o.PaymentID = data.PaymentID
		o.UpdatedAt = data.PaidAt
	case EventOrderReady:
		var data OrderReady
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusReady
		o.UpdatedAt = data.ReadyAt
	case EventOrderCollected:
		var data OrderCollected
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCollected
		o.UpdatedAt = data.CollectedAt
	case EventOrderCancelled:
		var data OrderCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.CancelReason = data.Reason
		o.UpdatedAt = data.CancelledAt
	default:
		return fmt.Errorf("unknown order event %q", event.EventType)
	}
	o.Version = event.Version
	return nil
}

// PlaceOrder carries everything needed to open an order.
type PlaceOrder struct {
	CustomerID   string
	RestaurantID string
	Currency     string
	Items        []Item
	Contact      Contact
	PickupTime   *time.Time
	TableNumber  string
}

type Service struct {
	eventStore store.EventStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(es store.EventStoreInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		eventStore: es,
		logger:     logger.Named("order"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get loads an order by replaying its events
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Place opens a pending order. The total is computed from the items.
func (s *Service) Place(ctx context.Context, cmd PlaceOrder) (*Order, error) {
	if len(cmd.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if cmd.RestaurantID == "" {
		return nil, ErrRestaurantMissing
	}

	total := decimal.Zero
	for i, item := range cmd.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidItem, i)
		}
		total = total.Add(item.Subtotal())
	}

	order := &Order{ID: uuid.New().String()}
	event := OrderPlaced{
		OrderID:      order.ID,
		CustomerID:   cmd.CustomerID,
		RestaurantID: cmd.RestaurantID,
		Items:        cmd.Items,
		Total:        total,
		Currency:     cmd.Currency,
		Contact:      cmd.Contact,
		PickupTime:   cmd.PickupTime,
		TableNumber:  cmd.TableNumber,
		PlacedAt:     s.now(),
	}

	if err := aggregate.Apply(ctx, s.eventStore, order, AggregateType, EventOrderPlaced, event); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("restaurant_id", order.RestaurantID),
		zap.String("total", order.Total.StringFixed(2)))
	s.snapshot(ctx, order)
	return order, nil
}

// Pay records a confirmed payment.
func (s *Service) Pay(ctx context.Context, orderID, paymentID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusPaid, EventOrderPaid, func(now time.Time) any {
		return OrderPaid{OrderID: orderID, PaymentID: paymentID, PaidAt: now}
	})
}

// MarkReady flags the order as ready for pickup.
func (s *Service) MarkReady(ctx context.Context, orderID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusReady, EventOrderReady, func(now time.Time) any {
		return OrderReady{OrderID: orderID, ReadyAt: now}
	})
}

// Collect closes the order once the customer picked it up.
func (s *Service) Collect(ctx context.Context, orderID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusCollected, EventOrderCollected, func(now time.Time) any {
		return OrderCollected{OrderID: orderID, CollectedAt: now}
	})
}

func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*Order, error) {
	return s.transition(ctx, orderID, StatusCancelled, EventOrderCancelled, func(now time.Time) any {
		return OrderCancelled{OrderID: orderID, Reason: reason, CancelledAt: now}
	})
}

func (s *Service) transition(ctx context.Context, orderID string, target Status, eventType string, build func(time.Time) any) (*Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(target) {
		return nil, order.transitionError(target)
	}

	if err := aggregate.Apply(ctx, s.eventStore, order, AggregateType, eventType, build(s.now())); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed", zap.String("order_id", orderID), zap.String("status", string(target)))
	s.snapshot(ctx, order)
	return order, nil
}

func (s *Service) snapshot(ctx context.Context, order *Order) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		s.logger.Warn("failed to create snapshot", zap.String("order_id", order.ID), zap.Error(err))
	}
}
