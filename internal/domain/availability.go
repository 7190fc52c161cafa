package domain

import "time"

// RoomAvailability is the ledger row for one room-night. A missing row
// means the implicit default: fully available, no overrides. Rows are
// created lazily on first write and never deleted, only reset.
type RoomAvailability struct {
	RoomID        string    `json:"room_id"`
	Date          time.Time `json:"date"`
	TotalUnits    int       `json:"total_units"`
	BookedUnits   int       `json:"booked_units"`
	IsAvailable   bool      `json:"is_available"`
	CustomPrice   *Money    `json:"custom_price,omitempty"`
	PriceModifier *Money    `json:"price_modifier,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultAvailability materializes the implicit row for a room-night.
func DefaultAvailability(room *Room, date time.Time) *RoomAvailability {
	return &RoomAvailability{
		RoomID:      room.ID,
		Date:        date,
		TotalUnits:  room.TotalUnits,
		BookedUnits: 0,
		IsAvailable: true,
	}
}

// AvailabilityOverride is a tenant-authored per-date override.
// Nil fields are left untouched (last-write-wins per field).
type AvailabilityOverride struct {
	IsAvailable   *bool
	CustomPrice   *Money
	PriceModifier *Money
	Reason        *string
}

// NightlyPrice is the pricing resolver's answer for one room-night.
type NightlyPrice struct {
	Date       time.Time `json:"date"`
	FinalPrice Money     `json:"final_price"`
	Available  bool      `json:"available"`
	Reason     string    `json:"reason,omitempty"`
}

// Quote is the priced breakdown of a prospective stay.
type Quote struct {
	RoomID      string         `json:"room_id"`
	CheckIn     time.Time      `json:"check_in"`
	CheckOut    time.Time      `json:"check_out"`
	Nights      []NightlyPrice `json:"nights"`
	TotalAmount Money          `json:"total_amount"`
}
