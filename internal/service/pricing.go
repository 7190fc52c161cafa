package service

import (
	"context"
	"fmt"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
)

type PricingService struct {
	roomRepo   ports.RoomRepo
	ledger     ports.AvailabilityLedger
	seasonRepo ports.SeasonRepo
}

func NewPricingService(roomRepo ports.RoomRepo, ledger ports.AvailabilityLedger, seasonRepo ports.SeasonRepo) *PricingService {
	return &PricingService{
		roomRepo:   roomRepo,
		ledger:     ledger,
		seasonRepo: seasonRepo,
	}
}

// ResolvePrice computes the effective nightly price of one room-night.
// Layering: closed date short-circuits, custom price beats everything,
// then peak seasons compose on the running price, then the per-date
// modifier applies only when no season touched the date.
func (s *PricingService) ResolvePrice(ctx context.Context, roomID string, date time.Time) (*domain.NightlyPrice, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	date = calendar.Normalize(date)
	rows, err := s.ledger.GetRange(ctx, roomID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}

	row := domain.DefaultAvailability(room, date)
	if len(rows) > 0 {
		row = rows[0]
	}

	return s.resolveNight(ctx, room, row, date)
}

func (s *PricingService) resolveNight(ctx context.Context, room *domain.Room, row *domain.RoomAvailability, date time.Time) (*domain.NightlyPrice, error) {
	if !row.IsAvailable {
		reason := row.Reason
		if reason == "" {
			reason = "date closed for sale"
		}
		// No price is computed for an unavailable date.
		return &domain.NightlyPrice{Date: date, Available: false, Reason: reason}, nil
	}

	if row.CustomPrice != nil {
		return s.checkedPrice(date, *row.CustomPrice)
	}

	seasons, err := s.seasonRepo.ListCovering(ctx, room.PropertyID, date)
	if err != nil {
		return nil, fmt.Errorf("list covering seasons: %w", err)
	}

	price := room.BasePrice
	for _, season := range seasons {
		switch season.ChangeType {
		case domain.SeasonChangePercentage:
			price = price.ApplyPercent(season.ChangeValue)
		case domain.SeasonChangeNominal:
			price += domain.Money(season.ChangeValue)
		default:
			return nil, fmt.Errorf("%w: unknown season change type %q", domain.ErrInvalidPricing, season.ChangeType)
		}
	}

	if len(seasons) == 0 && row.PriceModifier != nil {
		price += *row.PriceModifier
	}

	return s.checkedPrice(date, price)
}

func (s *PricingService) checkedPrice(date time.Time, price domain.Money) (*domain.NightlyPrice, error) {
	if price < 0 {
		// Never silently clamp a negative price to zero.
		return nil, fmt.Errorf("%w: %d on %s", domain.ErrInvalidPricing, price, date.Format("2006-01-02"))
	}
	return &domain.NightlyPrice{Date: date, FinalPrice: price, Available: true}, nil
}

// Quote prices a prospective stay night by night. Any unavailable night
// fails the whole quote with the offending date attached.
func (s *PricingService) Quote(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*domain.Quote, error) {
	checkIn = calendar.Normalize(checkIn)
	checkOut = calendar.Normalize(checkOut)
	if calendar.Nights(checkIn, checkOut) < 1 {
		return nil, fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	rows, err := s.ledger.GetRange(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}
	byDate := make(map[time.Time]*domain.RoomAvailability, len(rows))
	for _, row := range rows {
		byDate[calendar.Normalize(row.Date)] = row
	}

	quote := &domain.Quote{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
	for _, date := range calendar.StayDates(checkIn, checkOut) {
		row, ok := byDate[date]
		if !ok {
			row = domain.DefaultAvailability(room, date)
		}

		night, err := s.resolveNight(ctx, room, row, date)
		if err != nil {
			return nil, err
		}
		if !night.Available {
			return nil, domain.NewAvailabilityError(roomID, date, night.Reason)
		}

		quote.Nights = append(quote.Nights, *night)
		quote.TotalAmount += night.FinalPrice
	}

	return quote, nil
}
