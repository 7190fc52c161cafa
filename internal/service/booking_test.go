package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/repository/memory"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

type stubGateway struct {
	mu       sync.Mutex
	txErr    error
	status   ports.GatewayStatus
	queryErr error
	created  int
}

func (g *stubGateway) CreateTransaction(ctx context.Context, b *domain.Booking) (*ports.GatewayTransaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	if g.txErr != nil {
		return nil, g.txErr
	}
	return &ports.GatewayTransaction{Ref: "tx-" + b.ID, PaymentURL: "https://pay.example/" + b.ID}, nil
}

func (g *stubGateway) QueryStatus(ctx context.Context, ref string) (ports.GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.queryErr
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   int
	confirmed int
	cancelled int
	expired   int
}

func (n *recordingNotifier) NotifyBookingCreated(ctx context.Context, b *domain.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
}

func (n *recordingNotifier) NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
}

func (n *recordingNotifier) NotifyBookingCancelled(ctx context.Context, b *domain.Booking, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

func (n *recordingNotifier) NotifyBookingExpired(ctx context.Context, b *domain.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
}

type stubReconciler struct {
	mu    sync.Mutex
	polls []string
}

func (r *stubReconciler) StartPolling(bookingID, paymentRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls = append(r.polls, paymentRef)
}

type bookingFixture struct {
	bookings   *memory.BookingStore
	rooms      *memory.RoomStore
	ledger     *memory.Ledger
	seasons    *memory.SeasonStore
	gateway    *stubGateway
	notifier   *recordingNotifier
	reconciler *stubReconciler
	svc        *BookingService
}

func newBookingFixture(t *testing.T, deadline time.Duration) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		bookings:   memory.NewBookingStore(),
		rooms:      memory.NewRoomStore(),
		ledger:     memory.NewLedger(),
		seasons:    memory.NewSeasonStore(),
		gateway:    &stubGateway{status: ports.GatewayStatusPending},
		notifier:   &recordingNotifier{},
		reconciler: &stubReconciler{},
	}

	room := &domain.Room{
		ID:         "r1",
		PropertyID: "p1",
		Name:       "Deluxe",
		BasePrice:  100_000,
		TotalUnits: 2,
	}
	require.NoError(t, f.rooms.Create(context.Background(), room))
	f.ledger.AddRoom(room)

	pricing := NewPricingService(f.rooms, f.ledger, f.seasons)
	f.svc = NewBookingService(f.bookings, f.ledger, pricing, f.gateway, f.notifier, deadline, newTestLogger(t))
	f.svc.SetReconciler(f.reconciler)

	return f
}

func futureDate(daysAhead int) time.Time {
	return calendar.Normalize(time.Now().UTC().AddDate(0, 0, daysAhead))
}

func createInput(method domain.PaymentMethod, units int) domain.CreateBookingInput {
	return domain.CreateBookingInput{
		UserID:        "u1",
		PaymentMethod: method,
		Items: []domain.CreateBookingItem{
			{RoomID: "r1", CheckIn: futureDate(30), CheckOut: futureDate(33), Units: units},
		},
	}
}

func TestBookingService_Create_SnapshotsPricesAndReserves(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	before := time.Now().UTC()
	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 2))

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusWaitingPayment, booking.Status)
	assert.NotEmpty(t, booking.BookingNo)
	require.Len(t, booking.Items, 1)

	item := booking.Items[0]
	assert.Equal(t, 3, item.Nights)
	assert.Equal(t, domain.Money(100_000), item.UnitPrice)
	assert.Equal(t, domain.Money(600_000), item.Amount)
	assert.Equal(t, domain.Money(600_000), booking.TotalAmount)
	assert.Equal(t, futureDate(33), booking.LastCheckOut)

	assert.False(t, booking.PaymentDeadline.Before(before.Add(time.Hour)))

	// Inventory is held for every stay night.
	assert.Equal(t, 2, f.ledger.BookedUnits("r1", futureDate(30)))
	assert.Equal(t, 2, f.ledger.BookedUnits("r1", futureDate(32)))
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(33)))

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.TotalAmount, stored.TotalAmount)

	time.Sleep(50 * time.Millisecond) // goroutine notify
}

func TestBookingService_Create_GatewayMethodStartsPolling(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))

	require.NoError(t, err)
	assert.Equal(t, "tx-"+booking.ID, booking.PaymentRef)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRef, stored.PaymentRef)

	f.reconciler.mu.Lock()
	defer f.reconciler.mu.Unlock()
	assert.Equal(t, []string{booking.PaymentRef}, f.reconciler.polls)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Create_GatewayDownRollsBack(t *testing.T) {
	f := newBookingFixture(t, time.Hour)
	f.gateway.txErr = errors.New("connection refused")

	_, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)

	// Neither the booking nor the reservation may survive.
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))
	bookings, err := f.bookings.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_Create_ConflictRollsBackWholeBooking(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	// Fill one of the middle nights completely.
	_, err := f.ledger.CheckAndReserve(context.Background(), "other", "r1",
		futureDate(31), futureDate(32), 2)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))

	require.Error(t, err)
	var availErr *domain.AvailabilityError
	require.True(t, errors.As(err, &availErr))
	assert.Equal(t, futureDate(31), availErr.Date)

	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))
	assert.Equal(t, 2, f.ledger.BookedUnits("r1", futureDate(31)))

	bookings, err := f.bookings.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_Create_Validation(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	tests := []struct {
		name  string
		input domain.CreateBookingInput
	}{
		{"missing user", domain.CreateBookingInput{
			PaymentMethod: domain.PaymentManualTransfer,
			Items:         createInput(domain.PaymentManualTransfer, 1).Items,
		}},
		{"bad method", domain.CreateBookingInput{
			UserID:        "u1",
			PaymentMethod: "cash",
			Items:         createInput(domain.PaymentManualTransfer, 1).Items,
		}},
		{"no items", domain.CreateBookingInput{
			UserID:        "u1",
			PaymentMethod: domain.PaymentManualTransfer,
		}},
		{"zero units", createInput(domain.PaymentManualTransfer, 0)},
		{"checkout before checkin", domain.CreateBookingInput{
			UserID:        "u1",
			PaymentMethod: domain.PaymentManualTransfer,
			Items: []domain.CreateBookingItem{
				{RoomID: "r1", CheckIn: futureDate(33), CheckOut: futureDate(30), Units: 1},
			},
		}},
		{"past checkin", domain.CreateBookingInput{
			UserID:        "u1",
			PaymentMethod: domain.PaymentManualTransfer,
			Items: []domain.CreateBookingItem{
				{RoomID: "r1", CheckIn: futureDate(-2), CheckOut: futureDate(1), Units: 1},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBookingService_SubmitPaymentProof(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)

	err = f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-123")
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusWaitingConfirmation, stored.Status)
	assert.Equal(t, "proof-123", stored.ProofRef)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_SubmitPaymentProof_NotOwner(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)

	err = f.svc.SubmitPaymentProof(context.Background(), booking.ID, "intruder", "proof-123")

	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestBookingService_SubmitPaymentProof_WrongState(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))
	require.NoError(t, f.svc.Confirm(context.Background(), booking.ID))

	err = f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-2")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Confirm_RequiresReview(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)

	// Still waiting for payment: confirmation is illegal.
	err = f.svc.Confirm(context.Background(), booking.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))
	require.NoError(t, f.svc.Confirm(context.Background(), booking.ID))

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Confirm_OnlyOneWinnerUnderRace(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))

	const racers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.svc.Confirm(context.Background(), booking.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Reject_ReleasesInventory(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 2))
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))
	require.Equal(t, 2, f.ledger.BookedUnits("r1", futureDate(30)))

	err = f.svc.Reject(context.Background(), booking.ID, "illegible transfer slip")
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Cancel(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), booking.ID, "intruder", "changed plans")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	err = f.svc.Cancel(context.Background(), booking.ID, "u1", "changed plans")
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Cancel_ConfirmedIsFinal(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))
	require.NoError(t, f.svc.Confirm(context.Background(), booking.ID))

	err = f.svc.Cancel(context.Background(), booking.ID, "u1", "changed plans")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 1, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ExpireOverdue_ReleasesInventory(t *testing.T) {
	// A negative deadline makes every new booking instantly overdue.
	f := newBookingFixture(t, -time.Minute)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)
	require.Equal(t, 1, f.ledger.BookedUnits("r1", futureDate(30)))

	expired, err := f.svc.ExpireOverdue(context.Background())

	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, booking.ID, expired[0].ID)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusExpired, stored.Status)
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	assert.Equal(t, 1, f.notifier.expired)
}

func TestBookingService_ExpireOverdue_SkipsPaidBookings(t *testing.T) {
	f := newBookingFixture(t, -time.Minute)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitPaymentProof(context.Background(), booking.ID, "u1", "proof-1"))

	expired, err := f.svc.ExpireOverdue(context.Background())

	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.Equal(t, 1, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ApplyGatewayStatus_Pending(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))
	require.NoError(t, err)

	done, err := f.svc.ApplyGatewayStatus(context.Background(), booking.ID, ports.GatewayStatusPending)

	require.NoError(t, err)
	assert.False(t, done)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusWaitingPayment, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ApplyGatewayStatus_SettlementConfirms(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))
	require.NoError(t, err)

	done, err := f.svc.ApplyGatewayStatus(context.Background(), booking.ID, ports.GatewayStatusSettlement)

	require.NoError(t, err)
	assert.True(t, done)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ApplyGatewayStatus_ManualMethodStopsAtReview(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentManualTransfer, 1))
	require.NoError(t, err)

	done, err := f.svc.ApplyGatewayStatus(context.Background(), booking.ID, ports.GatewayStatusSettlement)

	require.NoError(t, err)
	assert.True(t, done)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusWaitingConfirmation, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ApplyGatewayStatus_FailureCancelsAndReleases(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))
	require.NoError(t, err)
	require.Equal(t, 1, f.ledger.BookedUnits("r1", futureDate(30)))

	done, err := f.svc.ApplyGatewayStatus(context.Background(), booking.ID, ports.GatewayStatusDeny)

	require.NoError(t, err)
	assert.True(t, done)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
	assert.Equal(t, 0, f.ledger.BookedUnits("r1", futureDate(30)))

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_ApplyGatewayStatus_TerminalBookingIsDone(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), booking.ID, "u1", "changed plans"))

	done, err := f.svc.ApplyGatewayStatus(context.Background(), booking.ID, ports.GatewayStatusSettlement)

	require.NoError(t, err)
	assert.True(t, done)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_HandleGatewayCallback(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	booking, err := f.svc.Create(context.Background(), createInput(domain.PaymentGateway, 1))
	require.NoError(t, err)

	err = f.svc.HandleGatewayCallback(context.Background(), booking.PaymentRef, ports.GatewayStatusSettlement)
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_HandleGatewayCallback_UnknownRef(t *testing.T) {
	f := newBookingFixture(t, time.Hour)

	err := f.svc.HandleGatewayCallback(context.Background(), "tx-unknown", ports.GatewayStatusSettlement)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
