package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	commonredis "agsavn-data/common/redis"
	"agsavn-data/internal/domain"
	"agsavn-data/internal/metrics"
)

// AlertCreatedEventType is the "type" field of stream entries and webhook bodies.
const AlertCreatedEventType = "alert.created"

// AlertEvent is published once per alert raised by the evaluator.
type AlertEvent struct {
	AlertID        string               `json:"alert_id"`
	MeasurementID  string               `json:"measurement_id"`
	IndicatorID    string               `json:"indicator_id"`
	IndicatorName  string               `json:"indicator_name"`
	RegionID       string               `json:"region_id"`
	Severity       domain.AlertSeverity `json:"severity"`
	ThresholdType  domain.ThresholdType `json:"threshold_type"`
	ThresholdValue float64              `json:"threshold_value"`
	Value          float64              `json:"value"`
	Date           string               `json:"date"`
	Description    string               `json:"description,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

func newAlertEvent(a *domain.Alert, m *domain.Measurement) AlertEvent {
	ev := AlertEvent{
		AlertID:        a.AlertID,
		MeasurementID:  m.MeasurementID,
		IndicatorID:    m.IndicatorID,
		RegionID:       m.RegionID,
		Severity:       a.Severity,
		ThresholdType:  a.ThresholdType,
		ThresholdValue: a.ThresholdValue,
		Value:          m.Value,
		Date:           m.Date.Format(domain.DateLayout),
		CreatedAt:      a.CreatedAt,
	}
	if m.Indicator != nil {
		ev.IndicatorName = m.Indicator.Name
	}
	if a.Description != nil {
		ev.Description = *a.Description
	}
	return ev
}

// AlertNotifier announces committed alerts. Failures never undo the alert.
type AlertNotifier interface {
	NotifyAlertCreated(ctx context.Context, ev AlertEvent) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) NotifyAlertCreated(context.Context, AlertEvent) error { return nil }

// StreamNotifier XADDs alert events to a Redis stream.
type StreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

func NewStreamNotifier(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (n *StreamNotifier) NotifyAlertCreated(ctx context.Context, ev AlertEvent) error {
	id, err := commonredis.PublishJSONToStream(ctx, n.client, n.stream, n.maxLen, AlertCreatedEventType, ev)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("stream", "error").Inc()
		return fmt.Errorf("publish alert %s to stream %s: %w", ev.AlertID, n.stream, err)
	}
	metrics.NotificationsTotal.WithLabelValues("stream", "ok").Inc()
	n.logger.Debug("Alert published to stream",
		zap.String("stream", n.stream),
		zap.String("entry_id", id),
		zap.String("alert_id", ev.AlertID),
	)
	return nil
}

// WebhookNotifier POSTs alert events as JSON to a fixed URL.
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &WebhookNotifier{httpClient: client, url: url, logger: logger}
}

type webhookBody struct {
	Type  string     `json:"type"`
	Alert AlertEvent `json:"alert"`
}

func (n *WebhookNotifier) NotifyAlertCreated(ctx context.Context, ev AlertEvent) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(webhookBody{Type: AlertCreatedEventType, Alert: ev}).
		Post(n.url)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("webhook", "error").Inc()
		return fmt.Errorf("post alert %s to webhook: %w", ev.AlertID, err)
	}
	if resp.IsError() {
		metrics.NotificationsTotal.WithLabelValues("webhook", "error").Inc()
		return fmt.Errorf("webhook returned %d for alert %s", resp.StatusCode(), ev.AlertID)
	}
	metrics.NotificationsTotal.WithLabelValues("webhook", "ok").Inc()
	n.logger.Debug("Alert posted to webhook",
		zap.String("alert_id", ev.AlertID),
		zap.Int("status_code", resp.StatusCode()),
	)
	return nil
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []AlertNotifier

func (m MultiNotifier) NotifyAlertCreated(ctx context.Context, ev AlertEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyAlertCreated(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
