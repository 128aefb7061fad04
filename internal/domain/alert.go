package domain

import "time"

// AlertStatus alerts.status
type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "PENDING"
	AlertStatusConfirmed AlertStatus = "CONFIRMED"
	AlertStatusRejected  AlertStatus = "REJECTED"
	AlertStatusResolved  AlertStatus = "RESOLVED"
)

// Valid reports whether s is one of the four known statuses.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusPending, AlertStatusConfirmed, AlertStatusRejected, AlertStatusResolved:
		return true
	}
	return false
}

// Display is the lower-case label used in user-facing messages.
func (s AlertStatus) Display() string {
	switch s {
	case AlertStatusPending:
		return "pending"
	case AlertStatusConfirmed:
		return "confirmed"
	case AlertStatusRejected:
		return "rejected"
	case AlertStatusResolved:
		return "resolved"
	}
	return string(s)
}

// CanApply reports whether action is accepted while the alert is in status s.
//
//	approve, reject: only from PENDING
//	resolve:         from anything but RESOLVED
//	comment:         always
func (s AlertStatus) CanApply(action ActionType) bool {
	switch action {
	case ActionApprove, ActionReject:
		return s == AlertStatusPending
	case ActionResolve:
		return s != AlertStatusResolved
	case ActionComment:
		return true
	}
	return false
}

// AlertSeverity alerts.severity
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityMedium   AlertSeverity = "medium"
	SeverityLow      AlertSeverity = "low"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities for sorting, critical first.
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// ThresholdType which bound was breached
type ThresholdType string

const (
	ThresholdLow  ThresholdType = "low"
	ThresholdHigh ThresholdType = "high"
)

func (t ThresholdType) Valid() bool {
	return t == ThresholdLow || t == ThresholdHigh
}

// Alert alerts table
type Alert struct {
	AlertID        string        `db:"alert_id"`
	MeasurementID  string        `db:"measurement_id"`
	Severity       AlertSeverity `db:"severity"`
	Status         AlertStatus   `db:"status"`
	ThresholdValue float64       `db:"threshold_value"`
	ThresholdType  ThresholdType `db:"threshold_type"`
	Description    *string       `db:"description"`
	HandledBy      *string       `db:"handled_by"` // users.user_id, nullable
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// AlertDetail is an alert with the rows a detail view joins in.
type AlertDetail struct {
	Alert
	Measurement *Measurement
	Handler     *User
	Actions     []*AlertAction
}

// AlertSummary is an alert row joined with its measurement, indicator, region
// and category, as returned by list and export queries.
type AlertSummary struct {
	Alert
	IndicatorID   string
	IndicatorName string
	Unit          *string
	RegionID      string
	RegionName    string
	CategoryName  string
	Value         float64
	Date          time.Time
}
