package notification

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/store"
)

// Mailer sends the storefront's customer emails.
type Mailer interface {
	SendOrderConfirmation(to string, msg email.OrderConfirmation) error
	SendReservationReceived(to string, msg email.ReservationReceived) error
}

const timeLayout = "Mon 2 Jan 2006 15:04"

// Handler processes events for sending notifications
type Handler struct {
	mailer  Mailer
	catalog catalog.Source
	logger  *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, source catalog.Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mailer:  mailer,
		catalog: source,
		logger:  logger.Named("notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("failed to unmarshal event", zap.Error(err))
		return err
	}
	return h.Notify(ctx, event)
}

// Notify sends the email an event calls for, if any.
func (h *Handler) Notify(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, event)
	case reservation.EventReservationRequested:
		return h.handleReservationRequested(ctx, event)
	}
	return nil
}

// restaurant returns the restaurant's name and currency, falling back to
// the id when the catalog lookup fails.
func (h *Handler) restaurant(ctx context.Context, id string) catalog.Restaurant {
	r, err := h.catalog.GetRestaurant(ctx, id)
	if err != nil {
		h.logger.Warn("restaurant lookup failed", zap.String("restaurant_id", id), zap.Error(err))
		return catalog.Restaurant{ID: id, Name: id}
	}
	return *r
}

func (h *Handler) handleOrderPlaced(ctx context.Context, event store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal OrderPlaced", zap.Error(err))
		return err
	}

	logger := h.logger.With(zap.String("order_id", e.OrderID))
	if e.Contact.Email == "" {
		logger.Warn("order has no contact email")
		return nil
	}

	restaurant := h.restaurant(ctx, e.RestaurantID)
	currency := e.Currency

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			Name:      item.Name,
			Options:   catalog.DescribeOptions(item.SelectedOptions),
			Quantity:  item.Quantity,
			UnitPrice: catalog.FormatPrice(item.UnitPrice, currency),
			Subtotal:  catalog.FormatPrice(item.Subtotal(), currency),
		}
	}

	msg := email.OrderConfirmation{
		OrderID:        e.OrderID,
		RestaurantName: restaurant.Name,
		CustomerName:   e.Contact.Name,
		Items:          items,
		Total:          catalog.FormatPrice(e.Total, currency),
		TableNumber:    e.TableNumber,
	}
	if e.PickupTime != nil {
		msg.PickupTime = e.PickupTime.Format(timeLayout)
	}

	if err := h.mailer.SendOrderConfirmation(e.Contact.Email, msg); err != nil {
		logger.Error("failed to send order confirmation", zap.Error(err))
		return err
	}

	logger.Info("order confirmation sent")
	return nil
}

func (h *Handler) handleReservationRequested(ctx context.Context, event store.Event) error {
	var e reservation.ReservationRequested
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal ReservationRequested", zap.Error(err))
		return err
	}

	restaurant := h.restaurant(ctx, e.RestaurantID)
	msg := email.ReservationReceived{
		ReservationID:  e.ReservationID,
		RestaurantName: restaurant.Name,
		Name:           e.Name,
		PartySize:      e.PartySize,
		Time:           e.Time.Format(timeLayout),
	}

	if err := h.mailer.SendReservationReceived(e.Email, msg); err != nil {
		h.logger.Error("failed to send reservation email", zap.String("reservation_id", e.ReservationID), zap.Error(err))
		return err
	}

	h.logger.Info("reservation email sent", zap.String("reservation_id", e.ReservationID))
	return nil
}

var _ Mailer = (*email.Service)(nil)
