package service

import (
	"context"
	"testing"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryService(t *testing.T) (*InventoryService, *memory.Ledger) {
	t.Helper()

	rooms := memory.NewRoomStore()
	ledger := memory.NewLedger()
	seasons := memory.NewSeasonStore()

	room := &domain.Room{ID: "r1", PropertyID: "p1", Name: "Deluxe", BasePrice: 100_000, TotalUnits: 5}
	require.NoError(t, rooms.Create(context.Background(), room))
	ledger.AddRoom(room)

	return NewInventoryService(rooms, ledger, seasons), ledger
}

func TestInventoryService_CreateRoom(t *testing.T) {
	svc, _ := newInventoryService(t)

	room, err := svc.CreateRoom(context.Background(), domain.CreateRoomInput{
		PropertyID: "p1",
		Name:       "Suite",
		BasePrice:  250_000,
		TotalUnits: 3,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, domain.Money(250_000), room.BasePrice)

	got, err := svc.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Suite", got.Name)
}

func TestInventoryService_CreateRoom_Validation(t *testing.T) {
	svc, _ := newInventoryService(t)

	tests := []struct {
		name  string
		input domain.CreateRoomInput
	}{
		{"missing name", domain.CreateRoomInput{PropertyID: "p1", BasePrice: 1}},
		{"missing property", domain.CreateRoomInput{Name: "Suite", BasePrice: 1}},
		{"negative price", domain.CreateRoomInput{PropertyID: "p1", Name: "Suite", BasePrice: -1}},
		{"negative units", domain.CreateRoomInput{PropertyID: "p1", Name: "Suite", TotalUnits: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRoom(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestInventoryService_SetAvailabilityOverride(t *testing.T) {
	svc, ledger := newInventoryService(t)

	price := domain.Money(80_000)
	err := svc.SetAvailabilityOverride(context.Background(), "r1", date(2026, 7, 10),
		domain.AvailabilityOverride{CustomPrice: &price})
	require.NoError(t, err)

	rows, err := ledger.GetRange(context.Background(), "r1", date(2026, 7, 10), date(2026, 7, 11))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Money(80_000), *rows[0].CustomPrice)
}

func TestInventoryService_SetAvailabilityOverride_EmptyOverride(t *testing.T) {
	svc, _ := newInventoryService(t)

	err := svc.SetAvailabilityOverride(context.Background(), "r1", date(2026, 7, 10),
		domain.AvailabilityOverride{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInventoryService_SetAvailabilityOverride_NegativeCustomPrice(t *testing.T) {
	svc, _ := newInventoryService(t)

	price := domain.Money(-1)
	err := svc.SetAvailabilityOverride(context.Background(), "r1", date(2026, 7, 10),
		domain.AvailabilityOverride{CustomPrice: &price})

	assert.ErrorIs(t, err, domain.ErrInvalidPricing)
}

func TestInventoryService_CreatePeakSeason(t *testing.T) {
	svc, _ := newInventoryService(t)

	season, err := svc.CreatePeakSeason(context.Background(), domain.CreatePeakSeasonInput{
		PropertyID:  "p1",
		StartDate:   date(2026, 12, 20),
		EndDate:     date(2027, 1, 5),
		ChangeType:  domain.SeasonChangePercentage,
		ChangeValue: 25,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, season.ID)

	seasons, err := svc.ListPeakSeasons(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, seasons, 1)

	require.NoError(t, svc.DeletePeakSeason(context.Background(), season.ID))

	seasons, err = svc.ListPeakSeasons(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, seasons)
}

func TestInventoryService_CreatePeakSeason_Validation(t *testing.T) {
	svc, _ := newInventoryService(t)

	tests := []struct {
		name  string
		input domain.CreatePeakSeasonInput
	}{
		{"inverted range", domain.CreatePeakSeasonInput{
			PropertyID: "p1",
			StartDate:  date(2026, 7, 10),
			EndDate:    date(2026, 7, 1),
			ChangeType: domain.SeasonChangeNominal,
		}},
		{"bad change type", domain.CreatePeakSeasonInput{
			PropertyID: "p1",
			StartDate:  date(2026, 7, 1),
			EndDate:    date(2026, 7, 10),
			ChangeType: "multiplier",
		}},
		{"missing property", domain.CreatePeakSeasonInput{
			StartDate:  date(2026, 7, 1),
			EndDate:    date(2026, 7, 10),
			ChangeType: domain.SeasonChangeNominal,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePeakSeason(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestInventoryService_DeletePeakSeason_NotFound(t *testing.T) {
	svc, _ := newInventoryService(t)

	err := svc.DeletePeakSeason(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrSeasonNotFound)
}
