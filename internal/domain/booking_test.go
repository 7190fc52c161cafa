package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusWaitingPayment, BookingStatusWaitingConfirmation, true},
		{BookingStatusWaitingPayment, BookingStatusExpired, true},
		{BookingStatusWaitingPayment, BookingStatusCancelled, true},
		{BookingStatusWaitingPayment, BookingStatusConfirmed, false},
		{BookingStatusWaitingConfirmation, BookingStatusConfirmed, true},
		{BookingStatusWaitingConfirmation, BookingStatusCancelled, true},
		{BookingStatusWaitingConfirmation, BookingStatusExpired, false},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusWaitingPayment, false},
		{BookingStatusExpired, BookingStatusWaitingPayment, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.False(t, BookingStatusWaitingPayment.IsTerminal())
	assert.False(t, BookingStatusWaitingConfirmation.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusExpired.IsTerminal())
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentManualTransfer.Valid())
	assert.True(t, PaymentGateway.Valid())
	assert.False(t, PaymentMethod("credit_card").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
