package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

type Projector struct {
	readStore store.ReadStoreInterface
	logger    *zap.Logger
}

func NewProjector(readStore store.ReadStoreInterface, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{readStore: readStore, logger: logger.Named("projector")}
}

// HandleEvent decodes a bus message and projects it. It matches the Kafka
// consumer's handler signature.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	return p.Project(ctx, event)
}

// Project applies one stored event to the read models. Events of other
// aggregates are ignored.
func (p *Projector) Project(ctx context.Context, event store.Event) error {
	p.logger.Debug("received event",
		zap.String("event_type", event.EventType),
		zap.String("aggregate_type", event.AggregateType),
		zap.String("aggregate_id", event.AggregateID))

	switch event.AggregateType {
	case customer.AggregateType:
		return p.handleCustomerEvent(ctx, event)
	case order.AggregateType:
		return p.handleOrderEvent(ctx, event)
	case reservation.AggregateType:
		return p.handleReservationEvent(ctx, event)
	}
	return nil
}

// Replay rebuilds the read models from every stored event.
func (p *Projector) Replay(ctx context.Context, es store.EventStoreInterface) (int, error) {
	events, err := es.GetAllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load events: %w", err)
	}
	for i, event := range events {
		if err := p.Project(ctx, event); err != nil {
			return i, fmt.Errorf("failed to project %s %s: %w", event.EventType, event.ID, err)
		}
	}
	p.logger.Info("replay finished", zap.Int("events", len(events)))
	return len(events), nil
}

// update loads a document, applies fn and writes it back. A missing
// document is logged and skipped.
func update[T any](ctx context.Context, p *Projector, collection, id string, fn func(*T)) error {
	doc := new(T)
	ok, err := p.readStore.Get(ctx, collection, id, doc)
	if err != nil {
		return err
	}
	if !ok {
		p.logger.Warn("document not found for update", zap.String("collection", collection), zap.String("id", id))
		return nil
	}
	fn(doc)
	return p.readStore.Set(ctx, collection, id, doc)
}

func (p *Projector) handleCustomerEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case customer.EventCustomerCreated:
		var e customer.CustomerCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(ctx, readmodel.CollectionCustomers, e.CustomerID, &readmodel.CustomerReadModel{
			ID:        e.CustomerID,
			Email:     e.Email,
			Name:      e.Name,
			Phone:     e.Phone,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
		})

	case customer.EventCustomerRegistered:
		var e customer.CustomerRegistered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		c := readmodel.CustomerReadModel{ID: e.CustomerID, Email: e.Email, CreatedAt: e.RegisteredAt}
		if _, err := p.readStore.Get(ctx, readmodel.CollectionCustomers, e.CustomerID, &c); err != nil {
			return err
		}
		c.Name = e.Name
		c.Registered = true
		c.UpdatedAt = e.RegisteredAt
		return p.readStore.Set(ctx, readmodel.CollectionCustomers, e.CustomerID, &c)
	}
	return nil
}

func (p *Projector) handleOrderEvent(ctx context.Context, event store.Event) error {
	setStatus := func(orderID string, status order.Status, at time.Time, fn func(*readmodel.OrderReadModel)) error {
		return update(ctx, p, readmodel.CollectionOrders, orderID, func(o *readmodel.OrderReadModel) {
			o.Status = string(status)
			o.UpdatedAt = at
			if fn != nil {
				fn(o)
			}
		})
	}

	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		items := make([]readmodel.OrderItemReadModel, len(e.Items))
		for i, item := range e.Items {
			items[i] = readmodel.OrderItemReadModel{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				Options:   catalog.DescribeOptions(item.SelectedOptions),
				Subtotal:  item.Subtotal(),
			}
		}
		return p.readStore.Set(ctx, readmodel.CollectionOrders, e.OrderID, &readmodel.OrderReadModel{
			ID:           e.OrderID,
			CustomerID:   e.CustomerID,
			RestaurantID: e.RestaurantID,
			Items:        items,
			Total:        e.Total,
			Currency:     e.Currency,
			ContactName:  e.Contact.Name,
			ContactEmail: e.Contact.Email,
			ContactPhone: e.Contact.Phone,
			PickupTime:   e.PickupTime,
			TableNumber:  e.TableNumber,
			Status:       string(order.StatusPending),
			CreatedAt:    e.PlacedAt,
			UpdatedAt:    e.PlacedAt,
		})

	case order.EventOrderPaid:
		var e order.OrderPaid
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return setStatus(e.OrderID, order.StatusPaid, e.PaidAt, func(o *readmodel.OrderReadModel) {
			o.PaymentID = e.PaymentID
		})

	case order.EventOrderReady:
		var e order.OrderReady
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return setStatus(e.OrderID, order.StatusReady, e.ReadyAt, nil)

	case order.EventOrderCollected:
		var e order.OrderCollected
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return setStatus(e.OrderID, order.StatusCollected, e.CollectedAt, nil)

	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return setStatus(e.OrderID, order.StatusCancelled, e.CancelledAt, func(o *readmodel.OrderReadModel) {
			o.CancelReason = e.Reason
		})
	}
	return nil
}

func (p *Projector) handleReservationEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case reservation.EventReservationRequested:
		var e reservation.ReservationRequested
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(ctx, readmodel.CollectionReservations, e.ReservationID, &readmodel.ReservationReadModel{
			ID:           e.ReservationID,
			RestaurantID: e.RestaurantID,
			CustomerID:   e.CustomerID,
			Name:         e.Name,
			Email:        e.Email,
			Phone:        e.Phone,
			PartySize:    e.PartySize,
			Time:         e.Time,
			Status:       string(reservation.StatusRequested),
			CreatedAt:    e.RequestedAt,
			UpdatedAt:    e.RequestedAt,
		})

	case reservation.EventReservationConfirmed:
		var e reservation.ReservationConfirmed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return update(ctx, p, readmodel.CollectionReservations, e.ReservationID, func(r *readmodel.ReservationReadModel) {
			r.Status = string(reservation.StatusConfirmed)
			r.UpdatedAt = e.ConfirmedAt
		})

	case reservation.EventReservationDeclined:
		var e reservation.ReservationDeclined
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return update(ctx, p, readmodel.CollectionReservations, e.ReservationID, func(r *readmodel.ReservationReadModel) {
			r.Status = string(reservation.StatusDeclined)
			r.Reason = e.Reason
			r.UpdatedAt = e.DeclinedAt
		})
	}
	return nil
}
