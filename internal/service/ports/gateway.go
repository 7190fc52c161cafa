package ports

import (
	"context"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

// GatewayStatus is the external payment provider's transaction state,
// already normalized to lower case.
type GatewayStatus string

const (
	GatewayStatusPending    GatewayStatus = "pending"
	GatewayStatusSettlement GatewayStatus = "settlement"
	GatewayStatusCapture    GatewayStatus = "capture"
	GatewayStatusCancel     GatewayStatus = "cancel"
	GatewayStatusDeny       GatewayStatus = "deny"
	GatewayStatusExpire     GatewayStatus = "expire"
	GatewayStatusFailure    GatewayStatus = "failure"
)

// Settled reports whether the gateway considers the payment collected.
func (s GatewayStatus) Settled() bool {
	return s == GatewayStatusSettlement || s == GatewayStatusCapture
}

// Failed reports whether the gateway terminally rejected the payment.
func (s GatewayStatus) Failed() bool {
	switch s {
	case GatewayStatusCancel, GatewayStatusDeny, GatewayStatusExpire, GatewayStatusFailure:
		return true
	}
	return false
}

type GatewayTransaction struct {
	Ref        string
	PaymentURL string
}

// PaymentGateway is the narrow client for the external payment provider.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, b *domain.Booking) (*GatewayTransaction, error)
	QueryStatus(ctx context.Context, ref string) (GatewayStatus, error)
}
