package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSeasonNotFound  = errors.New("peak season not found")
)

var (
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrInvalidPricing    = errors.New("invalid computed price")
	ErrNotOwner          = errors.New("booking belongs to another user")
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

var (
	ErrValidation = errors.New("validation error")
)

// ErrInsufficientAvailability marks an expected reservation conflict.
// It carries the first offending date so the caller can explain the
// failure without re-deriving it.
var ErrInsufficientAvailability = errors.New("insufficient availability")

// AvailabilityError reports which room-night could not be sold and why.
type AvailabilityError struct {
	RoomID string
	Date   time.Time
	Reason string
}

func NewAvailabilityError(roomID string, date time.Time, reason string) *AvailabilityError {
	return &AvailabilityError{RoomID: roomID, Date: date, Reason: reason}
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability: room %s on %s: %s",
		e.RoomID, e.Date.Format("2006-01-02"), e.Reason)
}

func (e *AvailabilityError) Unwrap() error { return ErrInsufficientAvailability }

// TransitionError decorates ErrInvalidTransition with the rejected edge.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid booking state transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
