package service

import (
	"context"
	"fmt"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
	"github.com/google/uuid"
)

// InventoryService covers the tenant-facing side of the ledger: rooms,
// per-date overrides and peak seasons.
type InventoryService struct {
	roomRepo   ports.RoomRepo
	ledger     ports.AvailabilityLedger
	seasonRepo ports.SeasonRepo
}

func NewInventoryService(roomRepo ports.RoomRepo, ledger ports.AvailabilityLedger, seasonRepo ports.SeasonRepo) *InventoryService {
	return &InventoryService{
		roomRepo:   roomRepo,
		ledger:     ledger,
		seasonRepo: seasonRepo,
	}
}

func (s *InventoryService) CreateRoom(ctx context.Context, input domain.CreateRoomInput) (*domain.Room, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if input.PropertyID == "" {
		return nil, fmt.Errorf("%w: property_id is required", domain.ErrValidation)
	}
	if input.BasePrice < 0 {
		return nil, fmt.Errorf("%w: base_price must not be negative", domain.ErrValidation)
	}
	if input.TotalUnits < 0 {
		return nil, fmt.Errorf("%w: total_units must not be negative", domain.ErrValidation)
	}

	now := time.Now().UTC()
	room := &domain.Room{
		ID:         uuid.New().String(),
		PropertyID: input.PropertyID,
		Name:       input.Name,
		BasePrice:  input.BasePrice,
		TotalUnits: input.TotalUnits,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	return room, nil
}

func (s *InventoryService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

func (s *InventoryService) SetAvailabilityOverride(ctx context.Context, roomID string, date time.Time, o domain.AvailabilityOverride) error {
	if o.IsAvailable == nil && o.CustomPrice == nil && o.PriceModifier == nil && o.Reason == nil {
		return fmt.Errorf("%w: override sets no fields", domain.ErrValidation)
	}
	if o.CustomPrice != nil && *o.CustomPrice < 0 {
		return fmt.Errorf("%w: custom price must not be negative", domain.ErrInvalidPricing)
	}

	return s.ledger.SetOverride(ctx, roomID, date, o)
}

func (s *InventoryService) CreatePeakSeason(ctx context.Context, input domain.CreatePeakSeasonInput) (*domain.PeakSeason, error) {
	start := calendar.Normalize(input.StartDate)
	end := calendar.Normalize(input.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start_date must not be after end_date", domain.ErrValidation)
	}
	if !input.ChangeType.Valid() {
		return nil, fmt.Errorf("%w: change_type must be percentage or nominal", domain.ErrValidation)
	}
	if input.PropertyID == "" {
		return nil, fmt.Errorf("%w: property_id is required", domain.ErrValidation)
	}

	season := &domain.PeakSeason{
		ID:          uuid.New().String(),
		PropertyID:  input.PropertyID,
		StartDate:   start,
		EndDate:     end,
		ChangeType:  input.ChangeType,
		ChangeValue: input.ChangeValue,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.seasonRepo.Create(ctx, season); err != nil {
		return nil, fmt.Errorf("create peak season: %w", err)
	}

	return season, nil
}

func (s *InventoryService) DeletePeakSeason(ctx context.Context, id string) error {
	return s.seasonRepo.Delete(ctx, id)
}

func (s *InventoryService) ListPeakSeasons(ctx context.Context, propertyID string) ([]*domain.PeakSeason, error) {
	return s.seasonRepo.ListByProperty(ctx, propertyID)
}
