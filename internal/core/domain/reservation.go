package domain

import (
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Quantity bounds per booking request.
const (
	MinQuantity = 1
	MaxQuantity = 4
)

type Reservation struct {
	ID              int64             `json:"id"`
	EventID         int64             `json:"event_id"`
	UserName        string            `json:"user_name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Quantity        int               `json:"quantity"`
	TotalPrice      int               `json:"total_price"`
	Status          ReservationStatus `json:"status"`
	ReservationCode string            `json:"reservation_code"`
	CreatedAt       time.Time         `json:"created_at"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
}

// NewReservation builds a confirmed reservation against the given event.
// TotalPrice is computed once here and never changes afterwards.
func NewReservation(event *Event, userName, email, phone string, quantity int, code string, now time.Time) *Reservation {
	confirmedAt := now
	return &Reservation{
		EventID:         event.ID,
		UserName:        userName,
		Email:           email,
		Phone:           phone,
		Quantity:        quantity,
		TotalPrice:      event.Price * quantity,
		Status:          ReservationConfirmed,
		ReservationCode: code,
		CreatedAt:       now,
		ConfirmedAt:     &confirmedAt,
	}
}

// Cancel transitions the reservation to CANCELLED. The only legal
// transition is CONFIRMED -> CANCELLED; CANCELLED is terminal.
func (r *Reservation) Cancel() error {
	if r.Status == ReservationCancelled {
		return ErrAlreadyCancelled
	}
	r.Status = ReservationCancelled
	return nil
}
