package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

type BookingStore struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[string]*domain.Booking)}
}

func (s *BookingStore) Create(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *b
	s.bookings[b.ID] = &copied
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bookings, id)
	return nil
}

func (s *BookingStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *BookingStore) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*domain.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			copied := *b
			res = append(res, &copied)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// TransitionStatus mirrors the SQL backend's conditional UPDATE: the
// swap happens only while the current status still matches.
func (s *BookingStore) TransitionStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *BookingStore) SetProofRef(ctx context.Context, id, proofRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.ProofRef = proofRef
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *BookingStore) SetPaymentRef(ctx context.Context, id, paymentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.PaymentRef = paymentRef
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *BookingStore) ExpireOverdue(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.BookingStatusWaitingPayment && !b.PaymentDeadline.After(now) {
			b.Status = domain.BookingStatusExpired
			b.UpdatedAt = time.Now().UTC()
			copied := *b
			res = append(res, &copied)
		}
	}
	return res, nil
}

func (s *BookingStore) CompleteFinished(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.BookingStatusConfirmed && !b.LastCheckOut.AddDate(0, 0, 1).After(now) {
			b.Status = domain.BookingStatusCompleted
			b.UpdatedAt = time.Now().UTC()
			copied := *b
			res = append(res, &copied)
		}
	}
	return res, nil
}

func (s *BookingStore) FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.PaymentRef == paymentRef && !b.Status.IsTerminal() {
			copied := *b
			return &copied, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}
