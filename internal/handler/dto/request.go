package dto

type CreateRoomRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required"`
	BasePrice  int64  `json:"base_price" binding:"required,gte=0"`
	TotalUnits int    `json:"total_units" binding:"required,gt=0"`
}

type BookingItemRequest struct {
	RoomID   string `json:"room_id" binding:"required,uuid"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Units    int    `json:"units" binding:"required,gt=0"`
}

type CreateBookingRequest struct {
	UserID        string               `json:"user_id" binding:"required"`
	PaymentMethod string               `json:"payment_method" binding:"required"`
	Items         []BookingItemRequest `json:"items" binding:"required,min=1"`
}

type PaymentProofRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	ProofRef string `json:"proof_ref" binding:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CancelBookingRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// AvailabilityOverrideRequest uses pointer fields so an absent field
// leaves the stored value untouched.
type AvailabilityOverrideRequest struct {
	Date          string  `json:"date" binding:"required"`
	IsAvailable   *bool   `json:"is_available"`
	CustomPrice   *int64  `json:"custom_price"`
	PriceModifier *int64  `json:"price_modifier"`
	Reason        *string `json:"reason"`
}

type CreateSeasonRequest struct {
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	ChangeType  string `json:"change_type" binding:"required,oneof=percentage nominal"`
	ChangeValue int64  `json:"change_value" binding:"required"`
}

// GatewayWebhookRequest mirrors the provider's notification payload.
type GatewayWebhookRequest struct {
	TransactionID     string `json:"transaction_id" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
}
