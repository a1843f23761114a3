package reservation

import "time"

const (
	EventReservationRequested = "ReservationRequested"
	EventReservationConfirmed = "ReservationConfirmed"
	EventReservationDeclined  = "ReservationDeclined"
)

type ReservationRequested struct {
	ReservationID string    `json:"reservation_id"`
	RestaurantID  string    `json:"restaurant_id"`
	CustomerID    string    `json:"customer_id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	PartySize     int       `json:"party_size"`
	Time          time.Time `json:"time"`
	RequestedAt   time.Time `json:"requested_at"`
}

type ReservationConfirmed struct {
	ReservationID string    `json:"reservation_id"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type ReservationDeclined struct {
	ReservationID string    `json:"reservation_id"`
	Reason        string    `json:"reason,omitempty"`
	DeclinedAt    time.Time `json:"declined_at"`
}
