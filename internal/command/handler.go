package command

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/payment"
)

var (
	ErrMixedRestaurants      = errors.New("order lines belong to different restaurants")
	ErrPickupInPast          = errors.New("pickup time is in the past")
	ErrTableOrderingDisabled = errors.New("restaurant does not take table orders")
	ErrNotOrderOwner         = errors.New("order belongs to another customer")
)

type Handler struct {
	catalog      catalog.Source
	customerSvc  *customer.Service
	orderSvc     *order.Service
	reservations *reservation.Service
	payments     payment.Verifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewHandler(
	source catalog.Source,
	customerSvc *customer.Service,
	orderSvc *order.Service,
	reservations *reservation.Service,
	payments payment.Verifier,
	logger *zap.Logger,
) *Handler {
	if payments == nil {
		payments = payment.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:      source,
		customerSvc:  customerSvc,
		orderSvc:     orderSvc,
		reservations: reservations,
		payments:     payments,
		logger:       logger.Named("command"),
		now:          time.Now,
	}
}

// PlaceOrder validates the checkout against the restaurant, confirms any
// payment and opens the order. It never touches the cart: the caller clears
// it once this returns successfully.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	// 1. Lines must be non-empty and belong to one restaurant
	if len(cmd.Lines) == 0 {
		return nil, order.ErrEmptyOrder
	}
	restaurantID := cmd.Lines[0].RestaurantID
	for _, line := range cmd.Lines[1:] {
		if line.RestaurantID != restaurantID {
			return nil, ErrMixedRestaurants
		}
	}

	restaurant, err := h.catalog.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	// 2. Restaurant rules: table ordering, pickup hours, payment
	if cmd.TableNumber != "" && !restaurant.QRCodeOrderingEnabled {
		return nil, ErrTableOrderingDisabled
	}
	if cmd.PickupTime != nil {
		if cmd.PickupTime.Before(h.now()) {
			return nil, ErrPickupInPast
		}
		if err := restaurant.Schedule().ValidatePickup(*cmd.PickupTime); err != nil {
			return nil, err
		}
	}
	if err := restaurant.PaymentCapability.Check(cmd.PaymentToken); err != nil {
		return nil, err
	}

	// 3. Customer
	customerID := cmd.CustomerID
	if customerID == "" {
		c, err := h.customerSvc.FindOrCreate(ctx, customer.Contact{
			Email: cmd.Contact.Email,
			Name:  cmd.Contact.Name,
			Phone: cmd.Contact.Phone,
		})
		if err != nil {
			return nil, err
		}
		customerID = c.ID
	}

	// 4. Payment is captured before anything is stored
	items := order.ItemsFromCart(cmd.Lines)
	var confirmation *payment.Confirmation
	if cmd.PaymentToken != "" {
		total := cart.State{Lines: cmd.Lines}.TotalPrice()
		confirmation, err = h.payments.Confirm(ctx, cmd.PaymentToken, total, restaurant.Currency)
		if err != nil {
			return nil, err
		}
	}

	// 5. Place order (emits OrderPlaced event)
	o, err := h.orderSvc.Place(ctx, order.PlaceOrder{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Currency:     restaurant.Currency,
		Items:        items,
		Contact:      cmd.Contact,
		PickupTime:   cmd.PickupTime,
		TableNumber:  cmd.TableNumber,
	})
	if err != nil {
		if confirmation != nil {
			h.logger.Error("order failed after payment was captured",
				zap.String("payment_id", confirmation.ID), zap.Error(err))
		}
		return nil, err
	}

	// 6. Mark paid (emits OrderPaid event). The charge and the order already
	// exist, so a failure here leaves the order pending for staff to reconcile
	// rather than failing the checkout.
	if confirmation != nil {
		paid, err := h.orderSvc.Pay(ctx, o.ID, confirmation.ID)
		if err != nil {
			h.logger.Error("payment captured but not recorded on order",
				zap.String("order_id", o.ID), zap.String("payment_id", confirmation.ID), zap.Error(err))
			return o, nil
		}
		o = paid
	}

	return o, nil
}

// CancelOrder cancels an order on behalf of its customer or the restaurant.
func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (*order.Order, error) {
	if cmd.CustomerID != "" {
		o, err := h.orderSvc.Get(ctx, cmd.OrderID)
		if err != nil {
			return nil, err
		}
		if o.CustomerID != cmd.CustomerID {
			return nil, ErrNotOrderOwner
		}
	}
	return h.orderSvc.Cancel(ctx, cmd.OrderID, cmd.Reason)
}

func (h *Handler) MarkOrderReady(ctx context.Context, cmd MarkOrderReady) (*order.Order, error) {
	return h.orderSvc.MarkReady(ctx, cmd.OrderID)
}

func (h *Handler) CollectOrder(ctx context.Context, cmd CollectOrder) (*order.Order, error) {
	return h.orderSvc.Collect(ctx, cmd.OrderID)
}

// RequestReservation checks the restaurant's reservation settings and hours
// and records the request.
func (h *Handler) RequestReservation(ctx context.Context, cmd RequestReservation) (*reservation.Reservation, error) {
	restaurant, err := h.catalog.GetRestaurant(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, err
	}

	venue := reservation.Venue{
		RestaurantID:        restaurant.ID,
		AcceptsReservations: restaurant.ReservationsEnabled,
		Hours:               restaurant.Schedule(),
	}
	return h.reservations.Request(ctx, venue, reservation.Request{
		CustomerID: cmd.CustomerID,
		Name:       cmd.Name,
		Email:      cmd.Email,
		Phone:      cmd.Phone,
		PartySize:  cmd.PartySize,
		Time:       cmd.Time,
	})
}

func (h *Handler) ConfirmReservation(ctx context.Context, cmd ConfirmReservation) (*reservation.Reservation, error) {
	return h.reservations.Confirm(ctx, cmd.ReservationID)
}

func (h *Handler) DeclineReservation(ctx context.Context, cmd DeclineReservation) (*reservation.Reservation, error) {
	return h.reservations.Decline(ctx, cmd.ReservationID, cmd.Reason)
}
