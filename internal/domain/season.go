package domain

import "time"

type SeasonChangeType string

const (
	SeasonChangePercentage SeasonChangeType = "percentage"
	SeasonChangeNominal    SeasonChangeType = "nominal"
)

func (t SeasonChangeType) Valid() bool {
	return t == SeasonChangePercentage || t == SeasonChangeNominal
}

// PeakSeason is a tenant-defined date range (inclusive on both ends)
// with a price modifier applied to every room-night it covers.
// ChangeValue is an integer percent for percentage seasons and minor
// units for nominal ones.
type PeakSeason struct {
	ID          string           `json:"id"`
	PropertyID  string           `json:"property_id"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	ChangeType  SeasonChangeType `json:"change_type"`
	ChangeValue int64            `json:"change_value"`
	CreatedAt   time.Time        `json:"created_at"`
}

type CreatePeakSeasonInput struct {
	PropertyID  string
	StartDate   time.Time
	EndDate     time.Time
	ChangeType  SeasonChangeType
	ChangeValue int64
}
