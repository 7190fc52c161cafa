package memory

import (
	"context"
	"sync"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*domain.Room)}
}

func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *RoomStore) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}
