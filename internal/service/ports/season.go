package ports

import (
	"context"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
)

type SeasonRepo interface {
	Create(ctx context.Context, s *domain.PeakSeason) error
	Delete(ctx context.Context, id string) error
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.PeakSeason, error)

	// ListCovering returns the property's seasons containing date,
	// ordered ascending by start date with ties broken by id. The order
	// is load-bearing: overlapping seasons do not commute.
	ListCovering(ctx context.Context, propertyID string, date time.Time) ([]*domain.PeakSeason, error)
}
