package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/figoaljufrie/roomstay/internal/calendar"
	"github.com/figoaljufrie/roomstay/internal/domain"
)

type SeasonStore struct {
	mu      sync.Mutex
	seasons map[string]*domain.PeakSeason
}

func NewSeasonStore() *SeasonStore {
	return &SeasonStore{seasons: make(map[string]*domain.PeakSeason)}
}

func (s *SeasonStore) Create(ctx context.Context, season *domain.PeakSeason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *season
	s.seasons[season.ID] = &copied
	return nil
}

func (s *SeasonStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seasons[id]; !ok {
		return domain.ErrSeasonNotFound
	}
	delete(s.seasons, id)
	return nil
}

func (s *SeasonStore) ListByProperty(ctx context.Context, propertyID string) ([]*domain.PeakSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*domain.PeakSeason
	for _, season := range s.seasons {
		if season.PropertyID == propertyID {
			copied := *season
			res = append(res, &copied)
		}
	}
	sortSeasons(res)
	return res, nil
}

// ListCovering matches the SQL backend's ordering: ascending start date,
// ties broken by id.
func (s *SeasonStore) ListCovering(ctx context.Context, propertyID string, date time.Time) ([]*domain.PeakSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date = calendar.Normalize(date)
	var res []*domain.PeakSeason
	for _, season := range s.seasons {
		if season.PropertyID == propertyID && calendar.InRange(date, season.StartDate, season.EndDate) {
			copied := *season
			res = append(res, &copied)
		}
	}
	sortSeasons(res)
	return res, nil
}

func sortSeasons(seasons []*domain.PeakSeason) {
	sort.Slice(seasons, func(i, j int) bool {
		if seasons[i].StartDate.Equal(seasons[j].StartDate) {
			return seasons[i].ID < seasons[j].ID
		}
		return seasons[i].StartDate.Before(seasons[j].StartDate)
	})
}
