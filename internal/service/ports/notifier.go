package ports

import (
	"context"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

// BookingNotifier is a best-effort, non-blocking sink for user-facing
// status messages. Implementations must never fail the calling flow.
type BookingNotifier interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking)
	NotifyBookingConfirmed(ctx context.Context, b *domain.Booking)
	NotifyBookingCancelled(ctx context.Context, b *domain.Booking, reason string)
	NotifyBookingExpired(ctx context.Context, b *domain.Booking)
}
