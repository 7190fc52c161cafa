package ports

import (
	"context"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

// AvailabilityLedger is the source of truth for sellable room-nights.
// All mutations of a (room, date) row are serialized by the backend.
type AvailabilityLedger interface {
	// CheckAndReserve verifies and increments booked units for every
	// stay date of [checkIn, checkOut) in one atomic step. Either all
	// dates are reserved or none are mutated; failure is a
	// *domain.AvailabilityError naming the offending date.
	CheckAndReserve(ctx context.Context, bookingID, roomID string, checkIn, checkOut time.Time, units int) (*domain.Reservation, error)

	// Release returns the token's units to the ledger. Idempotent: a
	// second release of the same token is a no-op.
	Release(ctx context.Context, reservationID string) error

	// ReleaseByBooking releases every unreleased token of a booking.
	ReleaseByBooking(ctx context.Context, bookingID string) error

	SetOverride(ctx context.Context, roomID string, date time.Time, o domain.AvailabilityOverride) error

	// GetRange returns existing rows for [from, to); missing dates mean
	// the implicit full-availability default.
	GetRange(ctx context.Context, roomID string, from, to time.Time) ([]*domain.RoomAvailability, error)
}
