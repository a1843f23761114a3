package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

type Handler struct {
	readStore store.ReadStoreInterface
	logger    *zap.Logger
}

func NewHandler(readStore store.ReadStoreInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{readStore: readStore, logger: logger.Named("query")}
}

// get loads one document, logging and hiding store failures the way the
// list queries do.
func (h *Handler) get(ctx context.Context, collection, id string, dst any) bool {
	ok, err := h.readStore.Get(ctx, collection, id, dst)
	if err != nil {
		h.logger.Error("read failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false
	}
	return ok
}

func findAll[T any](ctx context.Context, h *Handler, collection, field, value string) []*T {
	docs, err := h.readStore.FindBy(ctx, collection, field, value)
	if err != nil {
		h.logger.Error("find failed", zap.String("collection", collection), zap.String("field", field), zap.Error(err))
		return nil
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v := new(T)
		if err := json.Unmarshal(doc, v); err != nil {
			h.logger.Warn("skipping unreadable document", zap.String("collection", collection), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// Customers
func (h *Handler) GetCustomer(ctx context.Context, id string) (*CustomerReadModel, bool) {
	var c CustomerReadModel
	if !h.get(ctx, readmodel.CollectionCustomers, id, &c) {
		return nil, false
	}
	return &c, true
}

// FindCustomerByEmail looks a customer up by normalized email.
func (h *Handler) FindCustomerByEmail(ctx context.Context, email string) (*CustomerReadModel, bool) {
	found := findAll[CustomerReadModel](ctx, h, readmodel.CollectionCustomers, "email", customer.NormalizeEmail(email))
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*OrderReadModel, bool) {
	var o OrderReadModel
	if !h.get(ctx, readmodel.CollectionOrders, id, &o) {
		return nil, false
	}
	return &o, true
}

// ListOrdersByCustomer returns the customer's orders, newest first.
func (h *Handler) ListOrdersByCustomer(ctx context.Context, customerID string) []*OrderReadModel {
	orders := findAll[OrderReadModel](ctx, h, readmodel.CollectionOrders, "customer_id", customerID)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

// ListOrdersByRestaurant returns a restaurant's orders, newest first.
func (h *Handler) ListOrdersByRestaurant(ctx context.Context, restaurantID string) []*OrderReadModel {
	orders := findAll[OrderReadModel](ctx, h, readmodel.CollectionOrders, "restaurant_id", restaurantID)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

// Reservations
func (h *Handler) GetReservation(ctx context.Context, id string) (*ReservationReadModel, bool) {
	var r ReservationReadModel
	if !h.get(ctx, readmodel.CollectionReservations, id, &r) {
		return nil, false
	}
	return &r, true
}

// ListReservationsByRestaurant returns a restaurant's reservations ordered by
// reservation time.
func (h *Handler) ListReservationsByRestaurant(ctx context.Context, restaurantID string) []*ReservationReadModel {
	list := findAll[ReservationReadModel](ctx, h, readmodel.CollectionReservations, "restaurant_id", restaurantID)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Time.Before(list[j].Time) })
	return list
}

// Count reports how many documents a collection holds.
func (h *Handler) Count(ctx context.Context, collection string) (int, error) {
	docs, err := h.readStore.GetAll(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return len(docs), nil
}
