package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/hours"
)

// menuItemResponse adds the display price to a menu item.
type menuItemResponse struct {
	catalog.MenuItem
	DisplayPrice string `json:"display_price"`
}

func newMenuResponse(items []catalog.MenuItem, currency string) []menuItemResponse {
	out := make([]menuItemResponse, len(items))
	for i, item := range items {
		out[i] = menuItemResponse{MenuItem: item, DisplayPrice: catalog.FormatPrice(item.Price, currency)}
	}
	return out
}

// Restaurant Handlers

func (h *Handlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.catalog.ListRestaurants(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if restaurants == nil {
		restaurants = []catalog.Restaurant{}
	}
	respondJSON(w, http.StatusOK, restaurants)
}

func (h *Handlers) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurant)
}

func (h *Handlers) GetRestaurantBySlug(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurantBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurant)
}

func (h *Handlers) GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	menu, err := h.catalog.GetMenu(r.Context(), restaurant.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newMenuResponse(menu, restaurant.Currency))
}

// Opening Hours Handlers

type pickupSlotsResponse struct {
	Date      string      `json:"date"`
	OpenToday bool        `json:"open_today"`
	Slots     []time.Time `json:"slots"`
}

// PickupSlots lists the pickup times still available on ?date=YYYY-MM-DD
// (default today). ?step= sets the spacing in minutes.
func (h *Handlers) PickupSlots(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := h.now().In(h.location)
	day := now
	if v := r.URL.Query().Get("date"); v != "" {
		day, err = time.ParseInLocation(time.DateOnly, v, h.location)
		if err != nil {
			h.fail(w, r, errInvalidDate)
			return
		}
	}
	step := hours.DefaultSlotStep
	if v := r.URL.Query().Get("step"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			step = time.Duration(minutes) * time.Minute
		}
	}

	schedule := restaurant.Schedule()
	slots := []time.Time{}
	for _, slot := range schedule.PickupSlots(day, step) {
		if !slot.Before(now) {
			slots = append(slots, slot)
		}
	}

	respondJSON(w, http.StatusOK, pickupSlotsResponse{
		Date:      day.Format(time.DateOnly),
		OpenToday: schedule.IsOpenOnDay(day),
		Slots:     slots,
	})
}

type openStatusResponse struct {
	At            time.Time  `json:"at"`
	Open          bool       `json:"open"`
	OpenOnDay     bool       `json:"open_on_day"`
	FirstOpenSlot *time.Time `json:"first_open_slot,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// OpenStatus reports whether the restaurant is open at ?at=RFC3339
// (default now).
func (h *Handlers) OpenStatus(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	at := h.now().In(h.location)
	if v := r.URL.Query().Get("at"); v != "" {
		at, err = time.Parse(time.RFC3339, v)
		if err != nil {
			h.fail(w, r, errInvalidTime)
			return
		}
	}

	resp := openStatusResponse{
		At:        at,
		Open:      hours.IsOpen(at, restaurant.OpeningHours),
		OpenOnDay: hours.IsOpenOnDay(at, restaurant.OpeningHours),
	}
	if slot, ok := hours.FirstOpenSlot(at, restaurant.OpeningHours); ok {
		resp.FirstOpenSlot = &slot
	}
	if !resp.Open {
		resp.Message = hours.ClosedMessage
	}
	respondJSON(w, http.StatusOK, resp)
}
