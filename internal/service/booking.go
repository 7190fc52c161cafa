package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/logger"
)

// Reconciler starts background reconciliation against the payment
// gateway for one booking.
type Reconciler interface {
	StartPolling(bookingID, paymentRef string)
}

type BookingService struct {
	bookingRepo ports.BookingRepo
	ledger      ports.AvailabilityLedger
	pricing     *PricingService
	gateway     ports.PaymentGateway
	notifier    ports.BookingNotifier
	reconciler  Reconciler
	deadline    time.Duration
	logger      logger.Logger
}

func NewBookingService(
	bookingRepo ports.BookingRepo,
	ledger ports.AvailabilityLedger,
	pricing *PricingService,
	gateway ports.PaymentGateway,
	notifier ports.BookingNotifier,
	paymentDeadline time.Duration,
	logger logger.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		ledger:      ledger,
		pricing:     pricing,
		gateway:     gateway,
		notifier:    notifier,
		deadline:    paymentDeadline,
		logger:      logger,
	}
}

// SetReconciler breaks the construction cycle between the service and
// the poller manager; call it once during wiring.
func (s *BookingService) SetReconciler(r Reconciler) { s.reconciler = r }

// Create quotes and snapshots prices, reserves inventory for every
// item, and registers the payment deadline. A reservation conflict on
// any item rolls the whole booking back.
func (s *BookingService) Create(ctx context.Context, input domain.CreateBookingInput) (*domain.Booking, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:              uuid.New().String(),
		BookingNo:       newBookingNo(now),
		UserID:          input.UserID,
		Status:          domain.BookingStatusWaitingPayment,
		PaymentMethod:   input.PaymentMethod,
		PaymentDeadline: now.Add(s.deadline),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, in := range input.Items {
		quote, err := s.pricing.Quote(ctx, in.RoomID, in.CheckIn, in.CheckOut)
		if err != nil {
			return nil, err
		}

		nights := len(quote.Nights)
		amount := quote.TotalAmount * domain.Money(in.Units)
		item := domain.BookingItem{
			ID:        uuid.New().String(),
			BookingID: booking.ID,
			RoomID:    in.RoomID,
			CheckIn:   quote.CheckIn,
			CheckOut:  quote.CheckOut,
			Nights:    nights,
			Units:     in.Units,
			UnitPrice: domain.Money(int64(quote.TotalAmount) / int64(nights)),
			Amount:    amount,
		}
		booking.Items = append(booking.Items, item)
		booking.TotalAmount += amount

		if item.CheckOut.After(booking.LastCheckOut) {
			booking.LastCheckOut = item.CheckOut
		}
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	for _, item := range booking.Items {
		if _, err := s.ledger.CheckAndReserve(ctx, booking.ID, item.RoomID, item.CheckIn, item.CheckOut, item.Units); err != nil {
			s.rollbackCreate(ctx, booking.ID)
			return nil, err
		}
	}

	if input.PaymentMethod == domain.PaymentGateway {
		tx, err := s.gateway.CreateTransaction(ctx, booking)
		if err != nil {
			s.rollbackCreate(ctx, booking.ID)
			return nil, fmt.Errorf("%w: create transaction: %v", domain.ErrGatewayUnavailable, err)
		}
		booking.PaymentRef = tx.Ref
		if err = s.bookingRepo.SetPaymentRef(ctx, booking.ID, tx.Ref); err != nil {
			s.rollbackCreate(ctx, booking.ID)
			return nil, fmt.Errorf("set payment ref: %w", err)
		}
		if s.reconciler != nil {
			s.reconciler.StartPolling(booking.ID, tx.Ref)
		}
	}

	s.logger.Info("booking created",
		logger.String("booking_id", booking.ID),
		logger.String("booking_no", booking.BookingNo),
		logger.String("user_id", booking.UserID),
		logger.String("payment_method", string(booking.PaymentMethod)),
	)

	go s.notifier.NotifyBookingCreated(context.WithoutCancel(ctx), booking)

	return booking, nil
}

func (s *BookingService) rollbackCreate(ctx context.Context, bookingID string) {
	if err := s.ledger.ReleaseByBooking(ctx, bookingID); err != nil {
		s.logger.Error("failed to release reservations on rollback",
			logger.String("booking_id", bookingID),
			logger.String("error", err.Error()),
		)
	}
	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		s.logger.Error("failed to delete booking on rollback",
			logger.String("booking_id", bookingID),
			logger.String("error", err.Error()),
		)
	}
}

func (s *BookingService) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// SubmitPaymentProof records the proof reference and moves the booking
// to waiting_for_confirmation. A deadline firing in between surfaces as
// an invalid transition, not a silent success.
func (s *BookingService) SubmitPaymentProof(ctx context.Context, bookingID, userID, proofRef string) error {
	if proofRef == "" {
		return fmt.Errorf("%w: proof_ref is required", domain.ErrValidation)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking.UserID != userID {
		return domain.ErrNotOwner
	}

	if err = s.bookingRepo.SetProofRef(ctx, bookingID, proofRef); err != nil {
		return fmt.Errorf("set proof ref: %w", err)
	}

	if err = s.transition(ctx, booking, domain.BookingStatusWaitingPayment, domain.BookingStatusWaitingConfirmation); err != nil {
		return err
	}

	s.logger.Info("payment proof submitted",
		logger.String("booking_id", bookingID),
		logger.String("proof_ref", proofRef),
	)

	return nil
}

// Confirm is the tenant accepting a payment under review.
func (s *BookingService) Confirm(ctx context.Context, bookingID string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	if err = s.transition(ctx, booking, domain.BookingStatusWaitingConfirmation, domain.BookingStatusConfirmed); err != nil {
		return err
	}

	s.logger.Info("booking confirmed", logger.String("booking_id", bookingID))
	go s.notifier.NotifyBookingConfirmed(context.WithoutCancel(ctx), booking)

	return nil
}

// Reject is the tenant refusing a payment under review; reserved units
// go back to the ledger.
func (s *BookingService) Reject(ctx context.Context, bookingID, reason string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	if err = s.transition(ctx, booking, domain.BookingStatusWaitingConfirmation, domain.BookingStatusCancelled); err != nil {
		return err
	}

	if err = s.ledger.ReleaseByBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("release reservations: %w", err)
	}

	s.logger.Info("booking rejected",
		logger.String("booking_id", bookingID),
		logger.String("reason", reason),
	)
	go s.notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), booking, reason)

	return nil
}

// Cancel is an explicit user or tenant cancellation, legal from any
// non-terminal state before confirmed.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID, reason string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if userID != "" && booking.UserID != userID {
		return domain.ErrNotOwner
	}

	if err = s.transition(ctx, booking, booking.Status, domain.BookingStatusCancelled); err != nil {
		return err
	}

	if err = s.ledger.ReleaseByBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("release reservations: %w", err)
	}

	s.logger.Info("booking cancelled",
		logger.String("booking_id", bookingID),
		logger.String("reason", reason),
	)
	go s.notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), booking, reason)

	return nil
}

// transition validates the edge and applies the compare-and-swap. A
// lost swap on a user-facing call is reported against the fresh state.
func (s *BookingService) transition(ctx context.Context, booking *domain.Booking, from, to domain.BookingStatus) error {
	if !domain.CanTransition(from, to) {
		return &domain.TransitionError{From: from, To: to}
	}

	applied, err := s.bookingRepo.TransitionStatus(ctx, booking.ID, from, to)
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if !applied {
		current, err := s.bookingRepo.GetByID(ctx, booking.ID)
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}
		return &domain.TransitionError{From: current.Status, To: to}
	}

	return nil
}

// ExpireOverdue flips every waiting booking past its deadline and
// returns the inventory. Called by the scheduler; bookings that left
// waiting_for_payment through another path are simply not matched.
func (s *BookingService) ExpireOverdue(ctx context.Context) ([]*domain.Booking, error) {
	expired, err := s.bookingRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("expire overdue: %w", err)
	}

	for _, b := range expired {
		if err = s.ledger.ReleaseByBooking(ctx, b.ID); err != nil {
			s.logger.Error("failed to release expired booking",
				logger.String("booking_id", b.ID),
				logger.String("error", err.Error()),
			)
			continue
		}
		go s.notifier.NotifyBookingExpired(context.WithoutCancel(ctx), b)
	}

	return expired, nil
}

// CompleteFinished moves confirmed bookings whose stay ended a day ago
// into completed.
func (s *BookingService) CompleteFinished(ctx context.Context) ([]*domain.Booking, error) {
	completed, err := s.bookingRepo.CompleteFinished(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("complete finished: %w", err)
	}
	return completed, nil
}

// ApplyGatewayStatus maps an external transaction status onto the state
// machine. Losing a compare-and-swap here is a no-op: some other actor
// already drove the booking, which is fine. The returned flag tells the
// poller whether reconciliation for this booking is finished.
func (s *BookingService) ApplyGatewayStatus(ctx context.Context, bookingID string, status ports.GatewayStatus) (bool, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("get booking: %w", err)
	}
	if booking.Status.IsTerminal() || booking.Status == domain.BookingStatusConfirmed {
		return true, nil
	}

	switch {
	case status.Settled():
		// Payment side is done; pass through review or straight to
		// confirmed depending on the method.
		if _, err = s.bookingRepo.TransitionStatus(ctx, bookingID,
			domain.BookingStatusWaitingPayment, domain.BookingStatusWaitingConfirmation); err != nil {
			return false, fmt.Errorf("transition to review: %w", err)
		}
		if booking.PaymentMethod != domain.PaymentGateway {
			// Manual review path: the tenant confirms from here.
			return true, nil
		}

		applied, err := s.bookingRepo.TransitionStatus(ctx, bookingID,
			domain.BookingStatusWaitingConfirmation, domain.BookingStatusConfirmed)
		if err != nil {
			return false, fmt.Errorf("transition to confirmed: %w", err)
		}
		if applied {
			s.logger.Info("booking confirmed by gateway settlement",
				logger.String("booking_id", bookingID),
			)
			go s.notifier.NotifyBookingConfirmed(context.WithoutCancel(ctx), booking)
		}
		return true, nil

	case status.Failed():
		applied, err := s.bookingRepo.TransitionStatus(ctx, bookingID,
			booking.Status, domain.BookingStatusCancelled)
		if err != nil {
			return false, fmt.Errorf("transition to cancelled: %w", err)
		}
		if applied {
			if err = s.ledger.ReleaseByBooking(ctx, bookingID); err != nil {
				return false, fmt.Errorf("release reservations: %w", err)
			}
			s.logger.Info("booking cancelled by gateway",
				logger.String("booking_id", bookingID),
				logger.String("gateway_status", string(status)),
			)
			go s.notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), booking, string(status))
		}
		return true, nil
	}

	// Non-terminal gateway status: keep polling.
	return false, nil
}

// HandleGatewayCallback drives the same transitions as the poller from
// an inbound webhook, resolved by the gateway's transaction reference.
func (s *BookingService) HandleGatewayCallback(ctx context.Context, paymentRef string, status ports.GatewayStatus) error {
	booking, err := s.bookingRepo.FindByPaymentRef(ctx, paymentRef)
	if err != nil {
		return fmt.Errorf("find booking by payment ref: %w", err)
	}

	if _, err = s.ApplyGatewayStatus(ctx, booking.ID, status); err != nil {
		return fmt.Errorf("apply gateway status: %w", err)
	}
	return nil
}

func validateCreateInput(input *domain.CreateBookingInput) error {
	if input.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if !input.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, input.PaymentMethod)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: provide at least one item", domain.ErrValidation)
	}

	today := calendar.Normalize(time.Now().UTC())
	for _, item := range input.Items {
		if item.Units <= 0 {
			return fmt.Errorf("%w: units must be positive", domain.ErrValidation)
		}
		if calendar.Nights(item.CheckIn, item.CheckOut) < 1 {
			return fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
		}
		if calendar.Normalize(item.CheckIn).Before(today) {
			return fmt.Errorf("%w: check-in must not be in the past", domain.ErrValidation)
		}
	}
	return nil
}

func newBookingNo(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), fragment)
}
