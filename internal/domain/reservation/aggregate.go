package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/domain/aggregate"
	"github.com/example/storefront/internal/domain/hours"
	"github.com/example/storefront/internal/infrastructure/store"
)

const AggregateType = "Reservation"

const (
	MinPartySize = 1
	MaxPartySize = 20
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationsDisabled = errors.New("restaurant does not take reservations")
	ErrRestaurantClosed     = errors.New("restaurant is closed at the requested time")
	ErrInvalidPartySize     = errors.New("party size must be between 1 and 20")
	ErrTimeInPast           = errors.New("reservation time is in the past")
	ErrContactRequired      = errors.New("name and email are required")
	ErrAlreadyDecided       = errors.New("reservation has already been confirmed or declined")
)

type Reservation struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PartySize    int       `json:"party_size"`
	Time         time.Time `json:"time"`
	Status       Status    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

func (r *Reservation) GetID() string    { return r.ID }
func (r *Reservation) GetVersion() int  { return r.Version }
func (r *Reservation) SetVersion(v int) { r.Version = v }

func (r *Reservation) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventReservationRequested:
		var data ReservationRequested
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.ID = data.ReservationID
		r.RestaurantID = data.RestaurantID
		r.CustomerID = data.CustomerID
		r.Name = data.Name
		r.Email = data.Email
		r.Phone = data.Phone
		r.PartySize = data.PartySize
		r.Time = data.Time
		r.Status = StatusRequested
		r.CreatedAt = data.RequestedAt
		r.UpdatedAt = data.RequestedAt
	case EventReservationConfirmed:
		var data ReservationConfirmed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Status = StatusConfirmed
		r.UpdatedAt = data.ConfirmedAt
	case EventReservationDeclined:
		var data ReservationDeclined
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Status = StatusDeclined
		r.Reason = data.Reason
		r.UpdatedAt = data.DeclinedAt
	default:
		return fmt.Errorf("unknown reservation event %q", event.EventType)
	}
	r.Version = event.Version
	return nil
}

// Venue is what the reservation rules need to know about a restaurant.
type Venue struct {
	RestaurantID        string
	AcceptsReservations bool
	Hours               hours.Schedule
}

// Request carries a table request.
type Request struct {
	CustomerID string
	Name       string
	Email      string
	Phone      string
	PartySize  int
	Time       time.Time
}

type Service struct {
	eventStore store.EventStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(es store.EventStoreInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		eventStore: es,
		logger:     logger.Named("reservation"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, reservationID string) (*Reservation, error) {
	r, found, err := aggregate.LoadAggregate(ctx, s.eventStore, reservationID, func() *Reservation {
		return &Reservation{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

// Request records a table request at venue. The requested time is checked
// in its own location against the venue's opening hours.
func (s *Service) Request(ctx context.Context, venue Venue, req Request) (*Reservation, error) {
	if !venue.AcceptsReservations {
		return nil, ErrReservationsDisabled
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, ErrContactRequired
	}
	if req.PartySize < MinPartySize || req.PartySize > MaxPartySize {
		return nil, ErrInvalidPartySize
	}
	now := s.now()
	if req.Time.Before(now) {
		return nil, ErrTimeInPast
	}
	if !venue.Hours.IsOpen(req.Time) {
		return nil, ErrRestaurantClosed
	}

	r := &Reservation{ID: uuid.New().String()}
	event := ReservationRequested{
		ReservationID: r.ID,
		RestaurantID:  venue.RestaurantID,
		CustomerID:    req.CustomerID,
		Name:          name,
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		PartySize:     req.PartySize,
		Time:          req.Time,
		RequestedAt:   now,
	}
	if err := aggregate.Apply(ctx, s.eventStore, r, AggregateType, EventReservationRequested, event); err != nil {
		return nil, err
	}

	s.logger.Info("reservation requested",
		zap.String("reservation_id", r.ID),
		zap.String("restaurant_id", r.RestaurantID),
		zap.Int("party_size", r.PartySize))
	return r, nil
}

// Confirm accepts a requested reservation.
func (s *Service) Confirm(ctx context.Context, reservationID string) (*Reservation, error) {
	return s.decide(ctx, reservationID, EventReservationConfirmed, func(now time.Time) any {
		return ReservationConfirmed{ReservationID: reservationID, ConfirmedAt: now}
	})
}

// Decline rejects a requested reservation.
func (s *Service) Decline(ctx context.Context, reservationID, reason string) (*Reservation, error) {
	return s.decide(ctx, reservationID, EventReservationDeclined, func(now time.Time) any {
		return ReservationDeclined{ReservationID: reservationID, Reason: reason, DeclinedAt: now}
	})
}

func (s *Service) decide(ctx context.Context, reservationID, eventType string, build func(time.Time) any) (*Reservation, error) {
	r, err := s.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusRequested {
		return nil, ErrAlreadyDecided
	}
	if err := aggregate.Apply(ctx, s.eventStore, r, AggregateType, eventType, build(s.now())); err != nil {
		return nil, err
	}
	s.logger.Info("reservation decided", zap.String("reservation_id", r.ID), zap.String("status", string(r.Status)))
	return r, nil
}
