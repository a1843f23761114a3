package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
)

func newTestOrderService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore, nil)
	return service, eventStore
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func placeCmd() PlaceOrder {
	return PlaceOrder{
		CustomerID:   "cust-1",
		RestaurantID: "R1",
		Currency:     "EUR",
		Items: []Item{
			{ProductID: "burger", Name: "Burger", UnitPrice: price("9.50"), Quantity: 2,
				SelectedOptions: []cart.SelectedOption{{OptionName: "Size", ChosenValues: []string{"Large"}}}},
			{ProductID: "fries", Name: "Fries", UnitPrice: price("3.00"), Quantity: 1},
		},
		Contact: Contact{Name: "Ada", Email: "ada@example.com"},
	}
}

func placeTestOrder(t *testing.T, service *Service) *Order {
	t.Helper()
	o, err := service.Place(context.Background(), placeCmd())
	require.NoError(t, err)
	return o
}

// ============================================
// Place Order Tests
// ============================================

func TestService_Place_Success(t *testing.T) {
	service, eventStore := newTestOrderService()

	order := placeTestOrder(t, service)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "cust-1", order.CustomerID)
	assert.Equal(t, "R1", order.RestaurantID)
	assert.True(t, order.Total.Equal(price("22.00")))
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 1, order.Version)

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderPlaced, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, AggregateType, eventStore.AppendCalls[0].AggregateType)
	data := eventStore.AppendCalls[0].Data.(OrderPlaced)
	assert.Equal(t, order.ID, data.OrderID)
}

func TestService_Place_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlaceOrder)
		wantErr error
	}{
		{"no items", func(c *PlaceOrder) { c.Items = nil }, ErrEmptyOrder},
		{"no restaurant", func(c *PlaceOrder) { c.RestaurantID = "" }, ErrRestaurantMissing},
		{"zero quantity", func(c *PlaceOrder) { c.Items[0].Quantity = 0 }, ErrInvalidItem},
		{"missing product", func(c *PlaceOrder) { c.Items[1].ProductID = "" }, ErrInvalidItem},
		{"negative price", func(c *PlaceOrder) { c.Items[1].UnitPrice = price("-1") }, ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, eventStore := newTestOrderService()
			cmd := placeCmd()
			tt.mutate(&cmd)

			order, err := service.Place(context.Background(), cmd)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
			assert.Empty(t, eventStore.AppendCalls)
		})
	}
}

func TestService_Place_StoreError(t *testing.T) {
	service, eventStore := newTestOrderService()
	eventStore.AppendErr = errors.New("db down")

	_, err := service.Place(context.Background(), placeCmd())

	assert.Error(t, err)
}

func TestService_Place_KeepsPickupAndTable(t *testing.T) {
	service, _ := newTestOrderService()
	pickup := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	cmd := placeCmd()
	cmd.PickupTime = &pickup
	cmd.TableNumber = "7"

	placed, err := service.Place(context.Background(), cmd)
	require.NoError(t, err)

	loaded, err := service.Get(context.Background(), placed.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.PickupTime)
	assert.True(t, pickup.Equal(*loaded.PickupTime))
	assert.Equal(t, "7", loaded.TableNumber)
	assert.True(t, loaded.Total.Equal(price("22")))
	assert.Equal(t, "Large", loaded.Items[0].SelectedOptions[0].ChosenValues[0])
}

// ============================================
// Status Transition Tests
// ============================================

func TestService_FullLifecycle(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	order := placeTestOrder(t, service)

	paid, err := service.Pay(ctx, order.ID, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, "pay-1", paid.PaymentID)

	ready, err := service.MarkReady(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)

	collected, err := service.Collect(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCollected, collected.Status)
	assert.Equal(t, 4, collected.Version)

	assert.Equal(t, []string{EventOrderPlaced, EventOrderPaid, EventOrderReady, EventOrderCollected}, eventStore.EventTypes())
}

func TestService_PayAtCounter(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()
	order := placeTestOrder(t, service)

	ready, err := service.MarkReady(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)
}

func TestService_Cancel(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()
	order := placeTestOrder(t, service)

	cancelled, err := service.Cancel(ctx, order.ID, "kitchen closed")

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "kitchen closed", cancelled.CancelReason)
}

func TestService_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("pay twice", func(t *testing.T) {
		service, _ := newTestOrderService()
		order := placeTestOrder(t, service)
		_, err := service.Pay(ctx, order.ID, "pay-1")
		require.NoError(t, err)

		_, err = service.Pay(ctx, order.ID, "pay-2")
		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	})

	t.Run("collect before ready", func(t *testing.T) {
		service, _ := newTestOrderService()
		order := placeTestOrder(t, service)

		_, err := service.Collect(ctx, order.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("cancel after ready", func(t *testing.T) {
		service, _ := newTestOrderService()
		order := placeTestOrder(t, service)
		_, err := service.MarkReady(ctx, order.ID)
		require.NoError(t, err)

		_, err = service.Cancel(ctx, order.ID, "too late")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("anything after cancel", func(t *testing.T) {
		service, _ := newTestOrderService()
		order := placeTestOrder(t, service)
		_, err := service.Cancel(ctx, order.ID, "")
		require.NoError(t, err)

		_, err = service.Pay(ctx, order.ID, "pay-1")
		assert.ErrorIs(t, err, ErrOrderCancelled)
	})

	t.Run("anything after collect", func(t *testing.T) {
		service, _ := newTestOrderService()
		order := placeTestOrder(t, service)
		_, _ = service.MarkReady(ctx, order.ID)
		_, err := service.Collect(ctx, order.ID)
		require.NoError(t, err)

		_, err = service.Cancel(ctx, order.ID, "")
		assert.ErrorIs(t, err, ErrOrderCollected)
	})
}

func TestService_UnknownOrder(t *testing.T) {
	service, _ := newTestOrderService()

	_, err := service.Pay(context.Background(), "missing", "pay-1")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusReady, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCollected, false},
		{StatusPaid, StatusReady, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusPaid, false},
		{StatusReady, StatusCollected, true},
		{StatusReady, StatusCancelled, false},
		{StatusCollected, StatusCancelled, false},
		{StatusCancelled, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.want, o.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// ApplyEvent / Snapshot Tests
// ============================================

func TestOrder_ApplyEvent_Unknown(t *testing.T) {
	o := &Order{}

	err := o.ApplyEvent(store.Event{EventType: "OrderShipped", Data: []byte(`{}`)})

	assert.Error(t, err)
}

func TestService_SnapshotsAfterThreshold(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	order := placeTestOrder(t, service)

	// Pad the stream with ready events so Collect writes version 10.
	for i := 0; i < store.SnapshotThreshold-2; i++ {
		_, err := eventStore.EventStore.Append(ctx, order.ID, AggregateType, EventOrderReady, OrderReady{OrderID: order.ID})
		require.NoError(t, err)
	}
	collected, err := service.Collect(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, store.SnapshotThreshold, collected.Version)
	require.Len(t, eventStore.SaveSnapshotCalls, 1)

	reloaded, err := service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCollected, reloaded.Status)
	assert.True(t, reloaded.Total.Equal(price("22")))
}

func TestItemsFromCart(t *testing.T) {
	lines := []cart.Line{
		{LineID: "l1", ProductID: "burger", Name: "Burger", UnitPrice: price("9.50"), Quantity: 2, RestaurantID: "R1"},
	}

	items := ItemsFromCart(lines)

	require.Len(t, items, 1)
	assert.Equal(t, "burger", items[0].ProductID)
	assert.True(t, items[0].Subtotal().Equal(price("19")))
}
