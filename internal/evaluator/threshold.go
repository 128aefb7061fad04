// Package evaluator decides whether a newly stored measurement breaches its
// indicator's alert thresholds.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agsavn-data/internal/domain"
)

// ErrIndicatorUnresolved the measurement was handed over without its indicator.
var ErrIndicatorUnresolved = errors.New("measurement indicator not resolved")

// AlertWriter is the single write the evaluator performs. In production it is
// an alerts repository bound to the measurement's insert transaction.
type AlertWriter interface {
	CreateAlert(ctx context.Context, alert *domain.Alert) error
}

// Decide returns the alert a measurement should raise, or nil.
//
// The low bound is checked first; a value below low never reaches the high
// check, so at most one alert is produced. Comparisons are strict.
func Decide(ind *domain.Indicator, m *domain.Measurement) *domain.Alert {
	var (
		threshold float64
		kind      domain.ThresholdType
	)
	switch {
	case ind.ThresholdLow != nil && m.Value < *ind.ThresholdLow:
		threshold, kind = *ind.ThresholdLow, domain.ThresholdLow
	case ind.ThresholdHigh != nil && m.Value > *ind.ThresholdHigh:
		threshold, kind = *ind.ThresholdHigh, domain.ThresholdHigh
	default:
		return nil
	}

	severity := domain.SeverityHigh
	if ind.AlertType == domain.AlertTypeRapid {
		severity = domain.SeverityCritical
	}

	desc := describe(ind, m.Value, threshold, kind)
	return &domain.Alert{
		MeasurementID:  m.MeasurementID,
		Severity:       severity,
		Status:         domain.AlertStatusPending,
		ThresholdValue: threshold,
		ThresholdType:  kind,
		Description:    &desc,
	}
}

// Evaluate runs Decide and persists the result through w.
// It returns the created alert, or nil when no bound was breached.
func Evaluate(ctx context.Context, w AlertWriter, m *domain.Measurement) (*domain.Alert, error) {
	if m == nil || m.Indicator == nil {
		return nil, ErrIndicatorUnresolved
	}
	alert := Decide(m.Indicator, m)
	if alert == nil {
		return nil, nil
	}
	if err := w.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert for measurement %s: %w", m.MeasurementID, err)
	}
	return alert, nil
}

func describe(ind *domain.Indicator, value, threshold float64, kind domain.ThresholdType) string {
	dir := "above"
	if kind == domain.ThresholdLow {
		dir = "below"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s value %s %s %s threshold %s", ind.Name,
		formatNumber(value), dir, kind, formatNumber(threshold))
	if u := ind.UnitLabel(); u != "" {
		b.WriteString(" ")
		b.WriteString(u)
	}
	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
