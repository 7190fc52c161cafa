package dto

import (
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

const dateLayout = "2006-01-02"

type RoomResponse struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"base_price"`
	TotalUnits int    `json:"total_units"`
	CreatedAt  string `json:"created_at"`
}

type NightlyPriceResponse struct {
	Date       string `json:"date"`
	FinalPrice int64  `json:"final_price"`
}

type QuoteResponse struct {
	RoomID      string                 `json:"room_id"`
	CheckIn     string                 `json:"check_in"`
	CheckOut    string                 `json:"check_out"`
	Nights      []NightlyPriceResponse `json:"nights"`
	TotalAmount int64                  `json:"total_amount"`
}

type BookingItemResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Nights    int    `json:"nights"`
	Units     int    `json:"units"`
	UnitPrice int64  `json:"unit_price"`
	Amount    int64  `json:"amount"`
}

type BookingResponse struct {
	ID              string                `json:"id"`
	BookingNo       string                `json:"booking_no"`
	UserID          string                `json:"user_id"`
	Status          string                `json:"status"`
	Items           []BookingItemResponse `json:"items"`
	TotalAmount     int64                 `json:"total_amount"`
	PaymentMethod   string                `json:"payment_method"`
	PaymentDeadline string                `json:"payment_deadline"`
	CreatedAt       string                `json:"created_at"`
}

type SeasonResponse struct {
	ID          string `json:"id"`
	PropertyID  string `json:"property_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ChangeType  string `json:"change_type"`
	ChangeValue int64  `json:"change_value"`
}

// ErrorResponse carries enough detail for the UI to explain an
// availability conflict without re-deriving it.
type ErrorResponse struct {
	Error  string `json:"error"`
	Date   string `json:"date,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func ToRoomResponse(r *domain.Room) RoomResponse {
	return RoomResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		Name:       r.Name,
		BasePrice:  int64(r.BasePrice),
		TotalUnits: r.TotalUnits,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func ToQuoteResponse(q *domain.Quote) QuoteResponse {
	nights := make([]NightlyPriceResponse, 0, len(q.Nights))
	for _, n := range q.Nights {
		nights = append(nights, NightlyPriceResponse{
			Date:       n.Date.Format(dateLayout),
			FinalPrice: int64(n.FinalPrice),
		})
	}

	return QuoteResponse{
		RoomID:      q.RoomID,
		CheckIn:     q.CheckIn.Format(dateLayout),
		CheckOut:    q.CheckOut.Format(dateLayout),
		Nights:      nights,
		TotalAmount: int64(q.TotalAmount),
	}
}

func ToBookingResponse(b *domain.Booking) BookingResponse {
	items := make([]BookingItemResponse, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BookingItemResponse{
			RoomID:    item.RoomID,
			CheckIn:   item.CheckIn.Format(dateLayout),
			CheckOut:  item.CheckOut.Format(dateLayout),
			Nights:    item.Nights,
			Units:     item.Units,
			UnitPrice: int64(item.UnitPrice),
			Amount:    int64(item.Amount),
		})
	}

	return BookingResponse{
		ID:              b.ID,
		BookingNo:       b.BookingNo,
		UserID:          b.UserID,
		Status:          string(b.Status),
		Items:           items,
		TotalAmount:     int64(b.TotalAmount),
		PaymentMethod:   string(b.PaymentMethod),
		PaymentDeadline: b.PaymentDeadline.Format(time.RFC3339),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

func ToSeasonResponse(s *domain.PeakSeason) SeasonResponse {
	return SeasonResponse{
		ID:          s.ID,
		PropertyID:  s.PropertyID,
		StartDate:   s.StartDate.Format(dateLayout),
		EndDate:     s.EndDate.Format(dateLayout),
		ChangeType:  string(s.ChangeType),
		ChangeValue: s.ChangeValue,
	}
}
