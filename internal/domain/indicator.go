package domain

import "time"

// AlertType indicators.alert_type
type AlertType string

const (
	AlertTypeRapid       AlertType = "RAPID"
	AlertTypeInformative AlertType = "INFORMATIVE"
)

func (t AlertType) Valid() bool {
	return t == AlertTypeRapid || t == AlertTypeInformative
}

// Indicator indicators table.
// ThresholdLow and ThresholdHigh are independent; low >= high is accepted as-is.
type Indicator struct {
	IndicatorID       string    `db:"indicator_id"`
	Name              string    `db:"name"`
	Description       *string   `db:"description"`
	CategoryID        string    `db:"category_id"`
	Unit              *string   `db:"unit"`
	DocumentationLink *string   `db:"documentation_link"`
	ThresholdLow      *float64  `db:"alert_threshold_low"`
	ThresholdHigh     *float64  `db:"alert_threshold_high"`
	AlertType         AlertType `db:"alert_type"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`

	CategoryName string `db:"-"` // joined from categories
}

// UnitLabel returns the unit or "" when unset.
func (i *Indicator) UnitLabel() string {
	if i == nil || i.Unit == nil {
		return ""
	}
	return *i.Unit
}
