package ports

import (
	"context"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	// Delete removes a booking that never entered circulation (its
	// reservation failed mid-creation). Not used after creation.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error)

	// TransitionStatus applies a compare-and-swap on the current status.
	// It returns false with no error when the swap lost to a concurrent
	// transition; callers decide whether that is a no-op or a conflict.
	TransitionStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error)

	SetProofRef(ctx context.Context, id, proofRef string) error
	SetPaymentRef(ctx context.Context, id, paymentRef string) error

	// ExpireOverdue atomically expires every waiting_for_payment booking
	// whose deadline has passed and returns the affected bookings.
	ExpireOverdue(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	// CompleteFinished moves confirmed bookings whose last checkout date
	// plus one day has elapsed into completed.
	CompleteFinished(ctx context.Context, now time.Time) ([]*domain.Booking, error)
}
