package httpapi

import (
	"agsavn-data/internal/domain"
)

type regionJSON struct {
	RegionID    string  `json:"region_id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toRegionJSON(r *domain.Region) regionJSON {
	return regionJSON{
		RegionID:    r.RegionID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

type categoryJSON struct {
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toCategoryJSON(c *domain.Category) categoryJSON {
	return categoryJSON{
		CategoryID:  c.CategoryID,
		Name:        c.Name,
		Code:        string(c.Code),
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

type indicatorJSON struct {
	IndicatorID        string   `json:"indicator_id"`
	Name               string   `json:"name"`
	Description        *string  `json:"description"`
	CategoryID         string   `json:"category_id"`
	CategoryName       string   `json:"category_name,omitempty"`
	Unit               *string  `json:"unit"`
	DocumentationLink  *string  `json:"documentation_link"`
	AlertThresholdLow  *float64 `json:"alert_threshold_low"`
	AlertThresholdHigh *float64 `json:"alert_threshold_high"`
	AlertType          string   `json:"alert_type"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

func toIndicatorJSON(i *domain.Indicator) indicatorJSON {
	return indicatorJSON{
		IndicatorID:        i.IndicatorID,
		Name:               i.Name,
		Description:        i.Description,
		CategoryID:         i.CategoryID,
		CategoryName:       i.CategoryName,
		Unit:               i.Unit,
		DocumentationLink:  i.DocumentationLink,
		AlertThresholdLow:  i.ThresholdLow,
		AlertThresholdHigh: i.ThresholdHigh,
		AlertType:          string(i.AlertType),
		CreatedAt:          formatTime(i.CreatedAt),
		UpdatedAt:          formatTime(i.UpdatedAt),
	}
}

type measurementJSON struct {
	MeasurementID string  `json:"measurement_id"`
	IndicatorID   string  `json:"indicator_id"`
	IndicatorName string  `json:"indicator_name,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	RegionID      string  `json:"region_id"`
	RegionName    string  `json:"region_name,omitempty"`
	Value         float64 `json:"value"`
	Source        *string `json:"source"`
	Date          string  `json:"date"`
	CreatedAt     string  `json:"created_at"`
}

func toMeasurementJSON(m *domain.Measurement) measurementJSON {
	out := measurementJSON{
		MeasurementID: m.MeasurementID,
		IndicatorID:   m.IndicatorID,
		RegionID:      m.RegionID,
		Value:         m.Value,
		Source:        m.Source,
		Date:          m.Date.Format(domain.DateLayout),
		CreatedAt:     formatTime(m.CreatedAt),
	}
	if m.Indicator != nil {
		out.IndicatorName = m.Indicator.Name
		out.Unit = m.Indicator.Unit
	}
	if m.Region != nil {
		out.RegionName = m.Region.Name
	}
	return out
}

type alertJSON struct {
	AlertID        string  `json:"alert_id"`
	MeasurementID  string  `json:"measurement_id"`
	Severity       string  `json:"severity"`
	Status         string  `json:"status"`
	ThresholdValue float64 `json:"threshold_value"`
	ThresholdType  string  `json:"threshold_type"`
	Description    *string `json:"description"`
	HandledBy      *string `json:"handled_by"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toAlertJSON(a *domain.Alert) alertJSON {
	return alertJSON{
		AlertID:        a.AlertID,
		MeasurementID:  a.MeasurementID,
		Severity:       string(a.Severity),
		Status:         string(a.Status),
		ThresholdValue: a.ThresholdValue,
		ThresholdType:  string(a.ThresholdType),
		Description:    a.Description,
		HandledBy:      a.HandledBy,
		CreatedAt:      formatTime(a.CreatedAt),
		UpdatedAt:      formatTime(a.UpdatedAt),
	}
}

type alertSummaryJSON struct {
	alertJSON
	IndicatorID   string  `json:"indicator_id"`
	IndicatorName string  `json:"indicator_name"`
	Unit          *string `json:"unit"`
	RegionID      string  `json:"region_id"`
	RegionName    string  `json:"region_name"`
	CategoryName  string  `json:"category_name"`
	Value         float64 `json:"value"`
	Date          string  `json:"date"`
}

func toAlertSummaryJSON(s *domain.AlertSummary) alertSummaryJSON {
	return alertSummaryJSON{
		alertJSON:     toAlertJSON(&s.Alert),
		IndicatorID:   s.IndicatorID,
		IndicatorName: s.IndicatorName,
		Unit:          s.Unit,
		RegionID:      s.RegionID,
		RegionName:    s.RegionName,
		CategoryName:  s.CategoryName,
		Value:         s.Value,
		Date:          s.Date.Format(domain.DateLayout),
	}
}

type userJSON struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type alertActionJSON struct {
	ActionID  string  `json:"action_id"`
	UserID    string  `json:"user_id"`
	UserEmail string  `json:"user_email,omitempty"`
	Action    string  `json:"action"`
	Comment   *string `json:"comment"`
	CreatedAt string  `json:"created_at"`
}

type alertDetailJSON struct {
	alertJSON
	Measurement *measurementJSON  `json:"measurement"`
	Handler     *userJSON         `json:"handler"`
	Actions     []alertActionJSON `json:"actions"`
}

func toAlertDetailJSON(d *domain.AlertDetail) alertDetailJSON {
	out := alertDetailJSON{alertJSON: toAlertJSON(&d.Alert), Actions: []alertActionJSON{}}
	if d.Measurement != nil {
		m := toMeasurementJSON(d.Measurement)
		out.Measurement = &m
	}
	if d.Handler != nil {
		out.Handler = &userJSON{
			UserID:   d.Handler.UserID,
			Email:    d.Handler.Email,
			FullName: d.Handler.FullName,
			Role:     string(d.Handler.Role),
		}
	}
	for _, a := range d.Actions {
		out.Actions = append(out.Actions, alertActionJSON{
			ActionID:  a.ActionID,
			UserID:    a.UserID,
			UserEmail: a.UserEmail,
			Action:    string(a.Action),
			Comment:   a.Comment,
			CreatedAt: formatTime(a.CreatedAt),
		})
	}
	return out
}

type activityJSON struct {
	ActivityID string  `json:"activity_id"`
	UserID     string  `json:"user_id"`
	Action     string  `json:"action"`
	Details    *string `json:"details"`
	CreatedAt  string  `json:"created_at"`
}

func toActivityJSON(a *domain.ActivityLog) activityJSON {
	return activityJSON{
		ActivityID: a.ActivityID,
		UserID:     a.UserID,
		Action:     a.Action,
		Details:    a.Details,
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
