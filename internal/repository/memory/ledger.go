// Package memory holds mutex-guarded in-process implementations of the
// repository ports. They back unit tests and local runs without
// Postgres, with the same all-or-nothing and idempotency semantics as
// the SQL backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/google/uuid"
)

type availabilityKey struct {
	roomID string
	date   time.Time
}

type Ledger struct {
	mu           sync.Mutex
	rooms        map[string]*domain.Room
	rows         map[availabilityKey]*domain.RoomAvailability
	reservations map[string]*domain.Reservation
}

func NewLedger() *Ledger {
	return &Ledger{
		rooms:        make(map[string]*domain.Room),
		rows:         make(map[availabilityKey]*domain.RoomAvailability),
		reservations: make(map[string]*domain.Reservation),
	}
}

// AddRoom seeds a room so availability rows can fall back to its
// default capacity.
func (l *Ledger) AddRoom(room *domain.Room) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[room.ID] = room
}

func (l *Ledger) CheckAndReserve(ctx context.Context, bookingID, roomID string, checkIn, checkOut time.Time, units int) (*domain.Reservation, error) {
	dates := calendar.StayDates(checkIn, checkOut)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: empty stay range", domain.ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	room, ok := l.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	// Verify every date before mutating any: a mid-range conflict must
	// leave the whole ledger untouched.
	for _, date := range dates {
		row := l.row(room, date)
		if !row.IsAvailable {
			reason := row.Reason
			if reason == "" {
				reason = "date closed for sale"
			}
			return nil, domain.NewAvailabilityError(roomID, date, reason)
		}
		if row.BookedUnits+units > row.TotalUnits {
			return nil, domain.NewAvailabilityError(roomID, date, "not enough units left")
		}
	}

	for _, date := range dates {
		row := l.row(room, date)
		row.BookedUnits += units
		row.UpdatedAt = time.Now().UTC()
		l.rows[availabilityKey{roomID, date}] = row
	}

	res := &domain.Reservation{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		RoomID:    roomID,
		CheckIn:   calendar.Normalize(checkIn),
		CheckOut:  calendar.Normalize(checkOut),
		Units:     units,
		CreatedAt: time.Now().UTC(),
	}
	l.reservations[res.ID] = res

	return res, nil
}

func (l *Ledger) Release(ctx context.Context, reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release(reservationID)
	return nil
}

func (l *Ledger) ReleaseByBooking(ctx context.Context, bookingID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, res := range l.reservations {
		if res.BookingID == bookingID {
			l.release(id)
		}
	}
	return nil
}

func (l *Ledger) release(reservationID string) {
	res, ok := l.reservations[reservationID]
	if !ok || res.Released {
		return
	}
	res.Released = true

	room := l.rooms[res.RoomID]
	for _, date := range calendar.StayDates(res.CheckIn, res.CheckOut) {
		row := l.row(room, date)
		row.BookedUnits -= res.Units
		row.UpdatedAt = time.Now().UTC()
		l.rows[availabilityKey{res.RoomID, date}] = row
	}
}

func (l *Ledger) SetOverride(ctx context.Context, roomID string, date time.Time, o domain.AvailabilityOverride) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	room, ok := l.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}

	date = calendar.Normalize(date)
	row := l.row(room, date)
	if o.IsAvailable != nil {
		row.IsAvailable = *o.IsAvailable
	}
	if o.CustomPrice != nil {
		row.CustomPrice = o.CustomPrice
	}
	if o.PriceModifier != nil {
		row.PriceModifier = o.PriceModifier
	}
	if o.Reason != nil {
		row.Reason = *o.Reason
	}
	row.UpdatedAt = time.Now().UTC()
	l.rows[availabilityKey{roomID, date}] = row

	return nil
}

func (l *Ledger) GetRange(ctx context.Context, roomID string, from, to time.Time) ([]*domain.RoomAvailability, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res []*domain.RoomAvailability
	for _, date := range calendar.StayDates(from, to) {
		if row, ok := l.rows[availabilityKey{roomID, date}]; ok {
			copied := *row
			res = append(res, &copied)
		}
	}
	return res, nil
}

// row returns the materialized row for a date, or the implicit default.
func (l *Ledger) row(room *domain.Room, date time.Time) *domain.RoomAvailability {
	if row, ok := l.rows[availabilityKey{room.ID, date}]; ok {
		return row
	}
	return domain.DefaultAvailability(room, date)
}

// BookedUnits exposes the current count for one room-night; test hook.
func (l *Ledger) BookedUnits(roomID string, date time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if row, ok := l.rows[availabilityKey{roomID, calendar.Normalize(date)}]; ok {
		return row.BookedUnits
	}
	return 0
}
