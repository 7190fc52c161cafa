package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type BookingRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewBookingRepo(db *dbpg.DB) *BookingRepository {
	return &BookingRepository{
		db: db,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO bookings (id, booking_no, user_id, status, payment_method, payment_deadline,
									payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.ExecContext(
		ctx, query, b.ID, b.BookingNo, b.UserID, b.Status, b.PaymentMethod,
		b.PaymentDeadline, b.PaymentRef, b.ProofRef, int64(b.TotalAmount),
		b.LastCheckOut, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	itemQuery := `INSERT INTO booking_items (id, booking_id, room_id, check_in, check_out, nights, units, unit_price, amount)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, item := range b.Items {
		if _, err = tx.ExecContext(
			ctx, itemQuery, item.ID, b.ID, item.RoomID, item.CheckIn, item.CheckOut,
			item.Nights, item.Units, int64(item.UnitPrice), int64(item.Amount),
		); err != nil {
			return fmt.Errorf("insert booking item: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes a booking that never entered circulation. Reservations
// are kept out of here on purpose: by the time a creation is rolled
// back its tokens have already been released.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reservations WHERE booking_id = $1`, id); err != nil {
		return fmt.Errorf("delete reservations: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM booking_items WHERE booking_id = $1`, id); err != nil {
		return fmt.Errorf("delete booking items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	return tx.Commit()
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT id, booking_no, user_id, status, payment_method, payment_deadline,
					 payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at
			  FROM bookings
			  WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items

	return b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `SELECT id, booking_no, user_id, status, payment_method, payment_deadline,
					 payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at
			  FROM bookings
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	var res []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range res {
		items, err := r.listItems(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Items = items
	}

	return res, nil
}

// TransitionStatus is the single write path for the state machine: a
// compare-and-swap on the current status. Zero rows affected means a
// concurrent transition won; the caller decides what that means.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	query := `UPDATE bookings
			  SET status = $3, updated_at = now()
			  WHERE id = $1 AND status = $2`
	res, err := r.db.Master.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("transition booking status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("booking rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *BookingRepository) SetProofRef(ctx context.Context, id, proofRef string) error {
	query := `UPDATE bookings SET proof_ref = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.Master.ExecContext(ctx, query, id, proofRef)
	if err != nil {
		return fmt.Errorf("set proof ref: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("proof ref rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) SetPaymentRef(ctx context.Context, id, paymentRef string) error {
	query := `UPDATE bookings SET payment_ref = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.Master.ExecContext(ctx, query, id, paymentRef)
	if err != nil {
		return fmt.Errorf("set payment ref: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("payment ref rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// ExpireOverdue is the scheduler's recovery and steady-state query in
// one statement: every waiting booking past its persisted deadline
// flips to expired atomically.
func (r *BookingRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	query := `UPDATE bookings
			  SET status = $2, updated_at = now()
			  WHERE status = $1 AND payment_deadline <= $3
			  RETURNING id, booking_no, user_id, status, payment_method, payment_deadline,
						payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at`

	rows, err := r.db.QueryWithRetry(
		ctx, r.strategy, query,
		domain.BookingStatusWaitingPayment, domain.BookingStatusExpired, now,
	)
	if err != nil {
		return nil, fmt.Errorf("expire overdue: %w", err)
	}
	defer rows.Close()

	var res []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}

	return res, rows.Err()
}

func (r *BookingRepository) CompleteFinished(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	query := `UPDATE bookings
			  SET status = $2, updated_at = now()
			  WHERE status = $1 AND last_check_out + INTERVAL '1 day' <= $3
			  RETURNING id, booking_no, user_id, status, payment_method, payment_deadline,
						payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at`

	rows, err := r.db.QueryWithRetry(
		ctx, r.strategy, query,
		domain.BookingStatusConfirmed, domain.BookingStatusCompleted, now,
	)
	if err != nil {
		return nil, fmt.Errorf("complete finished: %w", err)
	}
	defer rows.Close()

	var res []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}

	return res, rows.Err()
}

// FindByPaymentRef resolves the booking a gateway callback refers to.
func (r *BookingRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error) {
	query := `SELECT id, booking_no, user_id, status, payment_method, payment_deadline,
					 payment_ref, proof_ref, total_amount, last_check_out, created_at, updated_at
			  FROM bookings
			  WHERE payment_ref = $1 AND status = ANY($2)
			  ORDER BY created_at DESC
			  LIMIT 1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, paymentRef, pq.Array(domain.ActiveStatuses))
	if err != nil {
		return nil, fmt.Errorf("find booking by payment ref: %w", err)
	}

	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

func (r *BookingRepository) listItems(ctx context.Context, bookingID string) ([]domain.BookingItem, error) {
	query := `SELECT id, booking_id, room_id, check_in, check_out, nights, units, unit_price, amount
			  FROM booking_items
			  WHERE booking_id = $1
			  ORDER BY check_in, id`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking items: %w", err)
	}
	defer rows.Close()

	var items []domain.BookingItem
	for rows.Next() {
		var item domain.BookingItem
		var unitPrice, amount int64
		if err = rows.Scan(
			&item.ID, &item.BookingID, &item.RoomID, &item.CheckIn, &item.CheckOut,
			&item.Nights, &item.Units, &unitPrice, &amount,
		); err != nil {
			return nil, fmt.Errorf("scan booking item: %w", err)
		}
		item.UnitPrice = domain.Money(unitPrice)
		item.Amount = domain.Money(amount)
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanBooking(scan func(dest ...any) error) (*domain.Booking, error) {
	var b domain.Booking
	var totalAmount int64
	if err := scan(
		&b.ID, &b.BookingNo, &b.UserID, &b.Status, &b.PaymentMethod, &b.PaymentDeadline,
		&b.PaymentRef, &b.ProofRef, &totalAmount, &b.LastCheckOut, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.TotalAmount = domain.Money(totalAmount)
	return &b, nil
}
