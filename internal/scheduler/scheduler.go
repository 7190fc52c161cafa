package scheduler

import (
	"context"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/wb-go/wbf/logger"
)

type bookingLifecycle interface {
	ExpireOverdue(ctx context.Context) ([]*domain.Booking, error)
	CompleteFinished(ctx context.Context) ([]*domain.Booking, error)
}

// Scheduler fires deadline-driven transitions: unpaid bookings past
// their payment deadline expire, finished stays complete. Deadlines
// live in the database, so a restart loses nothing; the first tick runs
// immediately to catch everything that elapsed while the process was
// down.
type Scheduler struct {
	bookingService bookingLifecycle
	interval       time.Duration
	logger         logger.Logger
}

func New(
	bookingService bookingLifecycle,
	interval time.Duration,
	logger logger.Logger,
) *Scheduler {
	return &Scheduler{
		bookingService: bookingService,
		interval:       interval,
		logger:         logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("deadline scheduler started",
		logger.Duration("interval", s.interval),
	)

	// Recovery pass: expire deadlines that elapsed before startup.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("deadline scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	expired, err := s.bookingService.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("failed to expire overdue bookings",
			logger.String("error", err.Error()),
		)
	} else {
		for _, b := range expired {
			s.logger.Info("booking expired",
				logger.String("booking_id", b.ID),
				logger.String("booking_no", b.BookingNo),
				logger.String("user_id", b.UserID),
			)
		}
	}

	completed, err := s.bookingService.CompleteFinished(ctx)
	if err != nil {
		s.logger.Error("failed to complete finished bookings",
			logger.String("error", err.Error()),
		)
		return
	}
	for _, b := range completed {
		s.logger.Info("booking completed",
			logger.String("booking_id", b.ID),
			logger.String("booking_no", b.BookingNo),
		)
	}
}
