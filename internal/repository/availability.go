package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const reasonSoldOut = "not enough units left"

// AvailabilityRepository owns the room_availability and reservations
// tables. Rows are created lazily: a missing (room, date) row means the
// room's default full availability.
type AvailabilityRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewAvailabilityRepo(db *dbpg.DB) *AvailabilityRepository {
	return &AvailabilityRepository{
		db: db,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

// CheckAndReserve locks every stay date's row FOR UPDATE in ascending
// date order, verifies capacity on all of them, then increments all in
// the same transaction. A mid-range full date rolls everything back.
func (r *AvailabilityRepository) CheckAndReserve(ctx context.Context, bookingID, roomID string, checkIn, checkOut time.Time, units int) (*domain.Reservation, error) {
	dates := calendar.StayDates(checkIn, checkOut)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: empty stay range", domain.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var totalUnits int
	roomQuery := `SELECT total_units FROM rooms WHERE id = $1`
	if err = tx.QueryRowContext(ctx, roomQuery, roomID).Scan(&totalUnits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	insertQuery := `INSERT INTO room_availability (room_id, date, total_units)
					VALUES ($1, $2, $3)
					ON CONFLICT (room_id, date) DO NOTHING`
	lockQuery := `SELECT total_units, booked_units, is_available, COALESCE(reason, '')
				  FROM room_availability
				  WHERE room_id = $1 AND date = $2
				  FOR UPDATE`

	// Ascending date order keeps lock acquisition deterministic across
	// concurrent reservations for overlapping ranges.
	for _, date := range dates {
		if _, err = tx.ExecContext(ctx, insertQuery, roomID, date, totalUnits); err != nil {
			return nil, fmt.Errorf("materialize availability row: %w", err)
		}

		var rowTotal, booked int
		var available bool
		var reason string
		if err = tx.QueryRowContext(ctx, lockQuery, roomID, date).Scan(&rowTotal, &booked, &available, &reason); err != nil {
			return nil, fmt.Errorf("lock availability row: %w", err)
		}

		if !available {
			if reason == "" {
				reason = "date closed for sale"
			}
			return nil, domain.NewAvailabilityError(roomID, date, reason)
		}
		if booked+units > rowTotal {
			return nil, domain.NewAvailabilityError(roomID, date, reasonSoldOut)
		}
	}

	updateQuery := `UPDATE room_availability
					SET booked_units = booked_units + $3, updated_at = now()
					WHERE room_id = $1 AND date = $2`
	for _, date := range dates {
		if _, err = tx.ExecContext(ctx, updateQuery, roomID, date, units); err != nil {
			return nil, fmt.Errorf("increment booked units: %w", err)
		}
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
	reservationQuery := `INSERT INTO reservations (id, booking_id, room_id, check_in, check_out, units, created_at)
						 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(
		ctx, reservationQuery, res.ID, res.BookingID, res.RoomID,
		res.CheckIn, res.CheckOut, res.Units, res.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	return res, nil
}

// Release flips the token released exactly once; the conditional UPDATE
// makes a second call a no-op, so racing scheduler and manual cancel
// paths cannot decrement twice.
func (r *AvailabilityRepository) Release(ctx context.Context, reservationID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err = r.releaseInTx(ctx, tx, reservationID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AvailabilityRepository) ReleaseByBooking(ctx context.Context, bookingID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT id FROM reservations WHERE booking_id = $1 AND NOT released`
	rows, err := tx.QueryContext(ctx, query, bookingID)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan reservation id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate reservations: %w", err)
	}

	for _, id := range ids {
		if err = r.releaseInTx(ctx, tx, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *AvailabilityRepository) releaseInTx(ctx context.Context, tx *sql.Tx, reservationID string) error {
	flipQuery := `UPDATE reservations
				  SET released = TRUE
				  WHERE id = $1 AND NOT released
				  RETURNING room_id, check_in, check_out, units`

	var roomID string
	var checkIn, checkOut time.Time
	var units int
	err := tx.QueryRowContext(ctx, flipQuery, reservationID).Scan(&roomID, &checkIn, &checkOut, &units)
	if errors.Is(err, sql.ErrNoRows) {
		// Already released, or unknown token. Either way there is
		// nothing left to return to the ledger.
		return nil
	}
	if err != nil {
		return fmt.Errorf("flip reservation: %w", err)
	}

	decrementQuery := `UPDATE room_availability
					   SET booked_units = booked_units - $4, updated_at = now()
					   WHERE room_id = $1 AND date >= $2 AND date < $3`
	if _, err = tx.ExecContext(ctx, decrementQuery, roomID, checkIn, checkOut, units); err != nil {
		return fmt.Errorf("decrement booked units: %w", err)
	}

	return nil
}

// SetOverride upserts the row, touching only the fields the tenant set.
func (r *AvailabilityRepository) SetOverride(ctx context.Context, roomID string, date time.Time, o domain.AvailabilityOverride) error {
	date = calendar.Normalize(date)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var totalUnits int
	if err = tx.QueryRowContext(ctx, `SELECT total_units FROM rooms WHERE id = $1`, roomID).Scan(&totalUnits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return fmt.Errorf("get room: %w", err)
	}

	query := `INSERT INTO room_availability (room_id, date, total_units, is_available, custom_price, price_modifier, reason)
			  VALUES ($1, $2, $3, COALESCE($4, TRUE), $5, $6, $7)
			  ON CONFLICT (room_id, date) DO UPDATE SET
				  is_available   = COALESCE($4, room_availability.is_available),
				  custom_price   = COALESCE($5, room_availability.custom_price),
				  price_modifier = COALESCE($6, room_availability.price_modifier),
				  reason         = COALESCE($7, room_availability.reason),
				  updated_at     = now()`
	if _, err = tx.ExecContext(
		ctx, query, roomID, date, totalUnits,
		o.IsAvailable, moneyPtr(o.CustomPrice), moneyPtr(o.PriceModifier), o.Reason,
	); err != nil {
		return fmt.Errorf("upsert availability override: %w", err)
	}

	return tx.Commit()
}

func (r *AvailabilityRepository) GetRange(ctx context.Context, roomID string, from, to time.Time) ([]*domain.RoomAvailability, error) {
	query := `SELECT room_id, date, total_units, booked_units, is_available,
					 custom_price, price_modifier, COALESCE(reason, ''), updated_at
			  FROM room_availability
			  WHERE room_id = $1 AND date >= $2 AND date < $3
			  ORDER BY date`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, roomID, calendar.Normalize(from), calendar.Normalize(to))
	if err != nil {
		return nil, fmt.Errorf("get availability range: %w", err)
	}
	defer rows.Close()

	var res []*domain.RoomAvailability
	for rows.Next() {
		var a domain.RoomAvailability
		var customPrice, priceModifier sql.NullInt64
		if err = rows.Scan(
			&a.RoomID, &a.Date, &a.TotalUnits, &a.BookedUnits, &a.IsAvailable,
			&customPrice, &priceModifier, &a.Reason, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan availability row: %w", err)
		}
		if customPrice.Valid {
			v := domain.Money(customPrice.Int64)
			a.CustomPrice = &v
		}
		if priceModifier.Valid {
			v := domain.Money(priceModifier.Int64)
			a.PriceModifier = &v
		}
		res = append(res, &a)
	}

	return res, rows.Err()
}

func moneyPtr(m *domain.Money) *int64 {
	if m == nil {
		return nil
	}
	v := int64(*m)
	return &v
}
