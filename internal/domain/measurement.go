package domain

import "time"

// DateLayout is the wire format of measurements.date.
const DateLayout = "2006-01-02"

// Measurement measurements table; UNIQUE(indicator_id, region_id, date).
type Measurement struct {
	MeasurementID string    `db:"measurement_id"`
	IndicatorID   string    `db:"indicator_id"`
	RegionID      string    `db:"region_id"`
	Value         float64   `db:"value"`
	Source        *string   `db:"source"`
	Date          time.Time `db:"date"`
	CreatedAt     time.Time `db:"created_at"`

	// Resolved references; Indicator must be set before threshold evaluation.
	Indicator *Indicator `db:"-"`
	Region    *Region    `db:"-"`
}
