package domain

import "time"

type Room struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Name       string    `json:"name"`
	BasePrice  Money     `json:"base_price"`
	TotalUnits int       `json:"total_units"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateRoomInput struct {
	PropertyID string
	Name       string
	BasePrice  Money
	TotalUnits int
}
