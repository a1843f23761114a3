package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/query"
)

type checkoutRequest struct {
	Contact      order.Contact `json:"contact"`
	PickupTime   *time.Time    `json:"pickup_time,omitempty"`
	PaymentToken string        `json:"payment_token,omitempty"`
	TableNumber  string        `json:"table_number,omitempty"`
}

// Checkout places an order from the session's cart and clears the cart once
// the order exists. A failed checkout leaves the cart as it was.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	lines := engine.State().Lines
	cmd := command.PlaceOrder{
		Lines:        lines,
		Contact:      req.Contact,
		PickupTime:   req.PickupTime,
		PaymentToken: req.PaymentToken,
		TableNumber:  req.TableNumber,
	}
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		cmd.CustomerID = claims.CustomerID
		if cmd.Contact.Email == "" {
			cmd.Contact.Email = claims.Email
		}
	}

	placed, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !engine.ClearIf(r.Context(), lines) {
		h.logger.Warn("cart changed during checkout, kept",
			zap.String("order_id", placed.ID))
	}
	h.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("restaurant_id", placed.RestaurantID),
		zap.String("status", string(placed.Status)))

	respondJSON(w, http.StatusCreated, placed)
}

// GetOrder returns an order by id. Signed-in customers only see their own;
// guests reach their order through the unguessable id.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.queryHandler.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		h.fail(w, r, order.ErrOrderNotFound)
		return
	}

	if claims, ok := middleware.GetClaims(r.Context()); ok &&
		claims.Role != auth.RoleStaff && o.CustomerID != claims.CustomerID {
		h.fail(w, r, command.ErrNotOrderOwner)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.queryHandler.ListOrdersByCustomer(r.Context(), middleware.GetCustomerID(r.Context()))
	if orders == nil {
		orders = []*query.OrderReadModel{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	cmd := command.CancelOrder{OrderID: chi.URLParam(r, "id"), Reason: req.Reason}
	// Staff may cancel any order; customers only their own.
	if claims, ok := middleware.GetClaims(r.Context()); ok && claims.Role != auth.RoleStaff {
		cmd.CustomerID = claims.CustomerID
	}

	cancelled, err := h.cmdHandler.CancelOrder(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cancelled)
}

// Staff Handlers

func (h *Handlers) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.queryHandler.ListOrdersByRestaurant(r.Context(), chi.URLParam(r, "id"))
	if orders == nil {
		orders = []*query.OrderReadModel{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) MarkOrderReady(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.MarkOrderReady(r.Context(), command.MarkOrderReady{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CollectOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.CollectOrder(r.Context(), command.CollectOrder{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
