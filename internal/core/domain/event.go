package domain

import (
	"time"
)

type EventStatus string

const (
	EventAvailable EventStatus = "AVAILABLE"
	EventSoldOut   EventStatus = "SOLD_OUT"
	EventCancelled EventStatus = "CANCELLED"
)

type Event struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Venue          string      `json:"venue"`
	EventDate      time.Time   `json:"event_date"`
	TotalSeats     int         `json:"total_seats"`
	AvailableSeats int         `json:"available_seats"`
	Price          int         `json:"price"`
	Status         EventStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (e *Event) IsAvailable() bool {
	return e.Status == EventAvailable
}

// CanReserve reports whether quantity seats can be taken from the event
// as it currently stands. It performs no mutation.
func (e *Event) CanReserve(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	if e.Status == EventCancelled {
		return ErrEventCancelled
	}
	if e.AvailableSeats < quantity {
		return &InsufficientSeatsError{Remaining: e.AvailableSeats}
	}
	return nil
}

// Reserve decrements the available seat count and derives the resulting
// status. The caller must hold the event lock.
func (e *Event) Reserve(quantity int) error {
	if err := e.CanReserve(quantity); err != nil {
		return err
	}

	e.AvailableSeats -= quantity
	if e.AvailableSeats == 0 {
		e.Status = EventSoldOut
	}

	return nil
}

// Restock returns quantity seats to the pool after a cancellation. A sold
// out event becomes available again; a cancelled event stays cancelled.
func (e *Event) Restock(quantity int) {
	e.AvailableSeats += quantity
	if e.AvailableSeats > e.TotalSeats {
		e.AvailableSeats = e.TotalSeats
	}

	if e.Status == EventSoldOut {
		e.Status = EventAvailable
	}
}
