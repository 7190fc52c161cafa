package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type SeasonRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewSeasonRepo(db *dbpg.DB) *SeasonRepository {
	return &SeasonRepository{
		db: db,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func (r *SeasonRepository) Create(ctx context.Context, s *domain.PeakSeason) error {
	query := `INSERT INTO peak_seasons (id, property_id, start_date, end_date, change_type, change_value, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Master.ExecContext(
		ctx, query, s.ID, s.PropertyID, s.StartDate, s.EndDate,
		string(s.ChangeType), s.ChangeValue, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert peak season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Master.ExecContext(ctx, `DELETE FROM peak_seasons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete peak season: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("peak season rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrSeasonNotFound
	}
	return nil
}

func (r *SeasonRepository) ListByProperty(ctx context.Context, propertyID string) ([]*domain.PeakSeason, error) {
	query := `SELECT id, property_id, start_date, end_date, change_type, change_value, created_at
			  FROM peak_seasons
			  WHERE property_id = $1
			  ORDER BY start_date, id`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list peak seasons: %w", err)
	}
	defer rows.Close()

	return scanSeasons(rows)
}

// ListCovering keeps the ascending start_date, id order the pricing
// resolver depends on: overlapping season modifiers do not commute.
func (r *SeasonRepository) ListCovering(ctx context.Context, propertyID string, date time.Time) ([]*domain.PeakSeason, error) {
	query := `SELECT id, property_id, start_date, end_date, change_type, change_value, created_at
			  FROM peak_seasons
			  WHERE property_id = $1 AND start_date <= $2 AND end_date >= $2
			  ORDER BY start_date, id`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, propertyID, date)
	if err != nil {
		return nil, fmt.Errorf("list covering seasons: %w", err)
	}
	defer rows.Close()

	return scanSeasons(rows)
}

func scanSeasons(rows *sql.Rows) ([]*domain.PeakSeason, error) {
	var res []*domain.PeakSeason
	for rows.Next() {
		var s domain.PeakSeason
		var changeType string
		if err := rows.Scan(
			&s.ID, &s.PropertyID, &s.StartDate, &s.EndDate,
			&changeType, &s.ChangeValue, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan peak season: %w", err)
		}
		s.ChangeType = domain.SeasonChangeType(changeType)
		res = append(res, &s)
	}
	return res, rows.Err()
}
