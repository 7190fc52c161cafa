package ports

import (
	"context"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

type RoomRepo interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}
