package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/query"
)

type reservationRequest struct {
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PartySize    int       `json:"party_size"`
	Time         time.Time `json:"time"`
}

func (h *Handlers) RequestReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.cmdHandler.RequestReservation(r.Context(), command.RequestReservation{
		RestaurantID: req.RestaurantID,
		CustomerID:   middleware.GetCustomerID(r.Context()),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Time:         req.Time,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, ok := h.queryHandler.GetReservation(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		h.fail(w, r, reservation.ErrReservationNotFound)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Staff Handlers

func (h *Handlers) ListRestaurantReservations(w http.ResponseWriter, r *http.Request) {
	list := h.queryHandler.ListReservationsByRestaurant(r.Context(), chi.URLParam(r, "id"))
	if list == nil {
		list = []*query.ReservationReadModel{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.cmdHandler.ConfirmReservation(r.Context(), command.ConfirmReservation{
		ReservationID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeclineReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.cmdHandler.DeclineReservation(r.Context(), command.DeclineReservation{
		ReservationID: chi.URLParam(r, "id"),
		Reason:        req.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
