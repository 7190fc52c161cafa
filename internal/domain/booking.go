package domain

import "time"

type BookingStatus string

const (
	BookingStatusWaitingPayment      BookingStatus = "waiting_for_payment"
	BookingStatusWaitingConfirmation BookingStatus = "waiting_for_confirmation"
	BookingStatusConfirmed           BookingStatus = "confirmed"
	BookingStatusCompleted           BookingStatus = "completed"
	BookingStatusCancelled           BookingStatus = "cancelled"
	BookingStatusExpired             BookingStatus = "expired"
)

var ActiveStatuses = []BookingStatus{
	BookingStatusWaitingPayment,
	BookingStatusWaitingConfirmation,
	BookingStatusConfirmed,
}

// IsTerminal reports whether no further transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// legalTransitions is the full edge set of the booking state machine.
// Anything not listed here is an illegal transition.
var legalTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusWaitingPayment: {
		BookingStatusWaitingConfirmation,
		BookingStatusExpired,
		BookingStatusCancelled,
	},
	BookingStatusWaitingConfirmation: {
		BookingStatusConfirmed,
		BookingStatusCancelled,
	},
	BookingStatusConfirmed: {
		BookingStatusCompleted,
	},
}

// CanTransition reports whether from -> to is a legal state-machine edge.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentManualTransfer PaymentMethod = "manual_transfer"
	PaymentGateway        PaymentMethod = "payment_gateway"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentManualTransfer || m == PaymentGateway
}

type Booking struct {
	ID              string        `json:"id"`
	BookingNo       string        `json:"booking_no"`
	UserID          string        `json:"user_id"`
	Status          BookingStatus `json:"status"`
	Items           []BookingItem `json:"items"`
	TotalAmount     Money         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentDeadline time.Time     `json:"payment_deadline"`
	PaymentRef      string        `json:"payment_ref,omitempty"`
	ProofRef        string        `json:"proof_ref,omitempty"`
	LastCheckOut    time.Time     `json:"last_check_out"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// BookingItem is one room stay inside a booking. UnitPrice and Amount are
// snapshotted at creation time and never recomputed from live pricing.
type BookingItem struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Nights    int       `json:"nights"`
	Units     int       `json:"units"`
	UnitPrice Money     `json:"unit_price"`
	Amount    Money     `json:"amount"`
}

type CreateBookingInput struct {
	UserID        string
	PaymentMethod PaymentMethod
	Items         []CreateBookingItem
}

type CreateBookingItem struct {
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Units    int
}

// Reservation is a provisional hold on inventory units across a date
// range, releasable exactly once in effect.
type Reservation struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Units     int       `json:"units"`
	Released  bool      `json:"released"`
	CreatedAt time.Time `json:"created_at"`
}
