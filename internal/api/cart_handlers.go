package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/cart"
)

// CartSessionCookie identifies the browser's cart.
const CartSessionCookie = "cart_session"

const cartSessionMaxAge = 30 * 24 * time.Hour

type cartLineResponse struct {
	cart.Line
	Subtotal       decimal.Decimal `json:"subtotal"`
	OptionsSummary []string        `json:"options_summary,omitempty"`
}

type pendingProductResponse struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RestaurantID string          `json:"restaurant_id"`
}

type cartResponse struct {
	Lines              []cartLineResponse      `json:"lines"`
	OwnerRestaurantID  string                  `json:"owner_restaurant_id,omitempty"`
	LastAddedProductID string                  `json:"last_added_product_id,omitempty"`
	TotalPrice         decimal.Decimal         `json:"total_price"`
	TotalItemCount     int                     `json:"total_item_count"`
	Outcome            string                  `json:"outcome,omitempty"`
	LineID             string                  `json:"line_id,omitempty"`
	NeedsConfirmation  bool                    `json:"needs_confirmation,omitempty"`
	PendingProduct     *pendingProductResponse `json:"pending_product,omitempty"`
}

func newCartResponse(s cart.State) cartResponse {
	lines := make([]cartLineResponse, len(s.Lines))
	for i, line := range s.Lines {
		lines[i] = cartLineResponse{
			Line:           line,
			Subtotal:       line.Subtotal(),
			OptionsSummary: catalog.DescribeOptions(line.SelectedOptions),
		}
	}
	return cartResponse{
		Lines:              lines,
		OwnerRestaurantID:  s.OwnerRestaurantID,
		LastAddedProductID: s.LastAddedProductID,
		TotalPrice:         s.TotalPrice(),
		TotalItemCount:     s.TotalItemCount(),
	}
}

func (resp *cartResponse) setPending(p cart.Product) {
	resp.NeedsConfirmation = true
	resp.PendingProduct = &pendingProductResponse{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		RestaurantID: p.RestaurantID,
	}
}

// cartEngine returns the engine for the request's cart session, issuing a
// new session cookie when the request has none or an unusable one. The
// caller releases the engine when the request is done with it.
func (h *Handlers) cartEngine(w http.ResponseWriter, r *http.Request) (*cart.Engine, func(), error) {
	sessionID := ""
	if cookie, err := r.Cookie(CartSessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CartSessionCookie,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(cartSessionMaxAge / time.Second),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.sessions.Acquire(r.Context(), sessionID)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	resp := newCartResponse(engine.State())
	if pending, ok := engine.PendingSwitch(); ok {
		resp.setPending(pending)
	}
	respondJSON(w, http.StatusOK, resp)
}

type addItemRequest struct {
	MenuItemID string              `json:"menu_item_id"`
	Quantity   int                 `json:"quantity"`
	Options    map[string][]string `json:"options,omitempty"`
}

// AddItem adds a menu item with the chosen options. A product from another
// restaurant leaves the cart unchanged and answers 409 until the switch is
// confirmed or cancelled.
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
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

	item, err := h.catalog.GetMenuItem(r.Context(), req.MenuItemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !item.IsAvailable {
		h.fail(w, r, catalog.ErrItemUnavailable)
		return
	}
	selected, err := item.Customize(req.Options)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	opts := []cart.AddOption{cart.WithSelectedOptions(selected)}
	if req.Quantity != 0 {
		opts = append(opts, cart.WithQuantity(req.Quantity))
	}
	result, err := engine.AddItem(r.Context(), item.CartProduct(), opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := newCartResponse(result.State)
	resp.Outcome = result.Outcome.String()
	resp.LineID = result.LineID
	if result.Outcome == cart.OutcomeNeedsConfirmation {
		resp.setPending(item.CartProduct())
		respondJSON(w, http.StatusConflict, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ConfirmSwitch(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()
	state, err := engine.ConfirmSwitch(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(state))
}

func (h *Handlers) CancelSwitch(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()
	respondJSON(w, http.StatusOK, newCartResponse(engine.CancelSwitch(r.Context())))
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (h *Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.fail(w, r, errQuantityNeeded)
		return
	}
	if *req.Quantity > cart.MaxLineQuantity {
		h.fail(w, r, &cart.ValidationError{Field: "quantity", Err: cart.ErrInvalidQuantity})
		return
	}

	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()
	lineID := chi.URLParam(r, "lineID")
	respondJSON(w, http.StatusOK, newCartResponse(engine.UpdateQuantity(r.Context(), lineID, *req.Quantity)))
}

// UpdateLineOptions re-customizes a line in place. The line keeps its id,
// quantity and price snapshot.
func (h *Handlers) UpdateLineOptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Options map[string][]string `json:"options"`
	}
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
	lineID := chi.URLParam(r, "lineID")
	line, ok := engine.State().Line(lineID)
	if !ok {
		// Stale line ids are ignored, as in RemoveLine.
		respondJSON(w, http.StatusOK, newCartResponse(engine.State()))
		return
	}

	item, err := h.catalog.GetMenuItem(r.Context(), line.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	selected, err := item.Customize(req.Options)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(engine.UpdateLineOptions(r.Context(), lineID, selected, nil)))
}

func (h *Handlers) RemoveLine(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()
	respondJSON(w, http.StatusOK, newCartResponse(engine.RemoveLine(r.Context(), chi.URLParam(r, "lineID"))))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()
	respondJSON(w, http.StatusOK, newCartResponse(engine.Clear(r.Context())))
}

// Recommendations suggests menu items to go with the last product added.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	engine, release, err := h.cartEngine(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	state := engine.State()
	if state.IsEmpty() {
		respondJSON(w, http.StatusOK, []menuItemResponse{})
		return
	}
	restaurant, err := h.catalog.GetRestaurant(r.Context(), state.OwnerRestaurantID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	menu, err := h.catalog.GetMenu(r.Context(), restaurant.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	inCart := make(map[string]bool, len(state.Lines))
	for _, line := range state.Lines {
		inCart[line.ProductID] = true
	}
	picks := catalog.Recommend(menu, state.LastAddedProductID, inCart, catalog.DefaultRecommendations)
	respondJSON(w, http.StatusOK, newMenuResponse(picks, restaurant.Currency))
}
