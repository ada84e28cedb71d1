package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventCancelled      = errors.New("event is cancelled")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrInvalidQuantity     = fmt.Errorf("quantity must be between %d and %d", MinQuantity, MaxQuantity)
	ErrLockContention      = errors.New("event is being booked by another user, retry shortly")
	ErrCacheMiss           = errors.New("cache miss")

	// ErrDuplicateReservationCode signals a unique-index collision on the
	// generated reservation code; the caller retries with a fresh code.
	ErrDuplicateReservationCode = errors.New("reservation code already exists")
)

// InsufficientSeatsError reports how many seats were actually left when a
// booking asked for more.
type InsufficientSeatsError struct {
	Remaining int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats available (remaining: %d)", e.Remaining)
}
