package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/cart"
)

// ============================================
// Session Tests
// ============================================

func TestGetCart_IssuesSessionCookie(t *testing.T) {
	c := newTestServer(t).client(t)

	rec := c.do(http.MethodGet, "/api/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie, ok := c.cookies[CartSessionCookie]
	require.True(t, ok)
	_, err := uuid.Parse(cookie.Value)
	assert.NoError(t, err)
	assert.True(t, cookie.HttpOnly)

	resp := decode[cartResponse](t, rec)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.TotalPrice.IsZero())
}

func TestCart_ReusesSession(t *testing.T) {
	c := newTestServer(t).client(t)
	require.Equal(t, http.StatusOK, c.addItem(burgerID, 1).Code)
	session := c.cookies[CartSessionCookie].Value

	rec := c.do(http.MethodGet, "/api/cart", nil)

	assert.Equal(t, session, c.cookies[CartSessionCookie].Value)
	assert.Len(t, decode[cartResponse](t, rec).Lines, 1)
}

func TestCart_ReplacesForgedSession(t *testing.T) {
	c := newTestServer(t).client(t)
	c.cookies[CartSessionCookie] = &http.Cookie{Name: CartSessionCookie, Value: "../../etc"}

	c.do(http.MethodGet, "/api/cart", nil)

	_, err := uuid.Parse(c.cookies[CartSessionCookie].Value)
	assert.NoError(t, err)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	server := newTestServer(t)
	alice, bob := server.client(t), server.client(t)

	alice.addItem(burgerID, 2)
	rec := bob.do(http.MethodGet, "/api/cart", nil)

	assert.Empty(t, decode[cartResponse](t, rec).Lines)
}

// ============================================
// Add Item Tests
// ============================================

func TestAddItem_AddsThenMerges(t *testing.T) {
	c := newTestServer(t).client(t)

	rec := c.addItem(burgerID, 2)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[cartResponse](t, rec)
	assert.Equal(t, "added", first.Outcome)
	assert.NotEmpty(t, first.LineID)
	assert.Equal(t, diner, first.OwnerRestaurantID)

	rec = c.addItem(burgerID, 1)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[cartResponse](t, rec)
	assert.Equal(t, "merged", second.Outcome)
	assert.Equal(t, first.LineID, second.LineID)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, 3, second.Lines[0].Quantity)
	assert.True(t, second.Lines[0].Subtotal.Equal(price("28.50")))
	assert.True(t, second.TotalPrice.Equal(price("28.50")))
	assert.Equal(t, 3, second.TotalItemCount)
	assert.Equal(t, burgerID, second.LastAddedProductID)
}

func TestAddItem_DefaultsToOne(t *testing.T) {
	c := newTestServer(t).client(t)

	rec := c.do(http.MethodPost, "/api/cart/items", map[string]string{"menu_item_id": friesID})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[cartResponse](t, rec).TotalItemCount)
}

func TestAddItem_WithOptions(t *testing.T) {
	c := newTestServer(t).client(t)
	c.addItem(burgerID, 1)

	rec := c.do(http.MethodPost, "/api/cart/items", addItemRequest{
		MenuItemID: burgerID,
		Quantity:   1,
		Options:    map[string][]string{"size": {"large"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	assert.Equal(t, "added", resp.Outcome)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, []cart.SelectedOption{{OptionName: "Size", ChosenValues: []string{"Large"}}}, resp.Lines[1].SelectedOptions)
	assert.Equal(t, []string{"Size: Large"}, resp.Lines[1].OptionsSummary)
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown item", addItemRequest{MenuItemID: "nope"}, http.StatusNotFound},
		{"unavailable item", addItemRequest{MenuItemID: soupID}, http.StatusConflict},
		{"unknown choice", addItemRequest{MenuItemID: burgerID, Options: map[string][]string{"size": {"huge"}}}, http.StatusBadRequest},
		{"too many choices", addItemRequest{MenuItemID: burgerID, Options: map[string][]string{"size": {"regular", "large"}}}, http.StatusBadRequest},
		{"negative quantity", addItemRequest{MenuItemID: burgerID, Quantity: -1}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t).client(t)

			rec := c.do(http.MethodPost, "/api/cart/items", tt.body)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

// ============================================
// Restaurant Switch Tests
// ============================================

func TestAddItem_OtherRestaurantNeedsConfirmation(t *testing.T) {
	c := newTestServer(t).client(t)
	c.addItem(burgerID, 1)

	rec := c.addItem(nigiriID, 2)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[cartResponse](t, rec)
	assert.True(t, resp.NeedsConfirmation)
	assert.Equal(t, "needs_confirmation", resp.Outcome)
	require.NotNil(t, resp.PendingProduct)
	assert.Equal(t, nigiriID, resp.PendingProduct.ProductID)
	assert.Equal(t, diner, resp.OwnerRestaurantID)
	assert.Len(t, resp.Lines, 1)

	get := decode[cartResponse](t, c.do(http.MethodGet, "/api/cart", nil))
	assert.True(t, get.NeedsConfirmation)
}

func TestConfirmSwitch(t *testing.T) {
	c := newTestServer(t).client(t)
	c.addItem(burgerID, 1)
	c.addItem(nigiriID, 2)

	rec := c.do(http.MethodPost, "/api/cart/switch/confirm", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	assert.Equal(t, sushiBar, resp.OwnerRestaurantID)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, nigiriID, resp.Lines[0].ProductID)
	assert.Equal(t, 2, resp.Lines[0].Quantity)

	rec = c.do(http.MethodPost, "/api/cart/switch/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelSwitch(t *testing.T) {
	c := newTestServer(t).client(t)
	c.addItem(burgerID, 1)
	c.addItem(nigiriID, 1)

	rec := c.do(http.MethodPost, "/api/cart/switch/cancel", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	assert.Equal(t, diner, resp.OwnerRestaurantID)
	assert.False(t, resp.NeedsConfirmation)
	assert.Len(t, resp.Lines, 1)
}

// ============================================
// Line Tests
// ============================================

func TestUpdateQuantity(t *testing.T) {
	c := newTestServer(t).client(t)
	lineID := decode[cartResponse](t, c.addItem(burgerID, 1)).LineID

	rec := c.do(http.MethodPatch, "/api/cart/lines/"+lineID, map[string]int{"quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[cartResponse](t, rec).TotalItemCount)

	rec = c.do(http.MethodPatch, "/api/cart/lines/"+lineID, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	assert.Empty(t, resp.Lines)
	assert.Empty(t, resp.OwnerRestaurantID)
}

func TestUpdateQuantity_Errors(t *testing.T) {
	c := newTestServer(t).client(t)
	lineID := decode[cartResponse](t, c.addItem(burgerID, 1)).LineID

	rec := c.do(http.MethodPatch, "/api/cart/lines/"+lineID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPatch, "/api/cart/lines/"+lineID, map[string]int{"quantity": cart.MaxLineQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLineEndpoints_IgnoreStaleLine(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"update quantity", http.MethodPatch, "/api/cart/lines/stale", map[string]int{"quantity": 2}},
		{"update options", http.MethodPut, "/api/cart/lines/stale/options", map[string]any{
			"options": map[string][]string{"size": {"large"}},
		}},
		{"remove", http.MethodDelete, "/api/cart/lines/stale", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t).client(t)
			lineID := decode[cartResponse](t, c.addItem(burgerID, 2)).LineID

			rec := c.do(tt.method, tt.path, tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[cartResponse](t, rec)
			require.Len(t, resp.Lines, 1)
			assert.Equal(t, lineID, resp.Lines[0].LineID)
			assert.Equal(t, 2, resp.Lines[0].Quantity)
		})
	}
}

func TestUpdateLineOptions(t *testing.T) {
	c := newTestServer(t).client(t)
	lineID := decode[cartResponse](t, c.addItem(burgerID, 2)).LineID

	rec := c.do(http.MethodPut, "/api/cart/lines/"+lineID+"/options", map[string]any{
		"options": map[string][]string{"size": {"large"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, lineID, resp.Lines[0].LineID)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.Equal(t, []string{"Size: Large"}, resp.Lines[0].OptionsSummary)

	rec = c.do(http.MethodPut, "/api/cart/lines/"+lineID+"/options", map[string]any{
		"options": map[string][]string{"size": {"huge"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveLineAndClear(t *testing.T) {
	c := newTestServer(t).client(t)
	lineID := decode[cartResponse](t, c.addItem(burgerID, 1)).LineID
	c.addItem(friesID, 1)

	rec := c.do(http.MethodDelete, "/api/cart/lines/"+lineID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[cartResponse](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, friesID, resp.Lines[0].ProductID)

	rec = c.do(http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartResponse](t, rec).Lines)
}

// ============================================
// Recommendation Tests
// ============================================

func TestRecommendations(t *testing.T) {
	c := newTestServer(t).client(t)

	rec := c.do(http.MethodGet, "/api/cart/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]menuItemResponse](t, rec))

	c.addItem(burgerID, 1)
	rec = c.do(http.MethodGet, "/api/cart/recommendations", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	picks := decode[[]menuItemResponse](t, rec)
	ids := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{friesID, colaID, wrapID}, ids)
	assert.Equal(t, catalog.FormatPrice(price("3.00"), "EUR"), picks[0].DisplayPrice)
}

func TestRecommendations_SkipsItemsInCart(t *testing.T) {
	c := newTestServer(t).client(t)
	c.addItem(friesID, 1)
	c.addItem(burgerID, 1)

	rec := c.do(http.MethodGet, "/api/cart/recommendations", nil)

	picks := decode[[]menuItemResponse](t, rec)
	for _, p := range picks {
		assert.NotEqual(t, friesID, p.ID)
		assert.NotEqual(t, burgerID, p.ID)
	}
}
