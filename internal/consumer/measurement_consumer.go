package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqttcommon "agsavn-data/common/mqtt"
	"agsavn-data/internal/domain"
	"agsavn-data/internal/service"
)

// Subscriber is the part of the MQTT client the consumer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MeasurementMessage one measurement as published by field devices and partner systems.
type MeasurementMessage struct {
	IndicatorID string   `json:"indicator_id"`
	RegionID    string   `json:"region_id"`
	Value       *float64 `json:"value"`
	Date        string   `json:"date"`
	Source      *string  `json:"source"`
}

// MeasurementConsumer feeds MQTT measurement payloads into MeasurementService.
type MeasurementConsumer struct {
	subscriber   Subscriber
	measurements service.MeasurementService
	topic        string
	qos          byte
	ingestUserID string
	logger       *zap.Logger
}

func NewMeasurementConsumer(
	subscriber Subscriber,
	measurements service.MeasurementService,
	topic string,
	qos byte,
	ingestUserID string,
	logger *zap.Logger,
) *MeasurementConsumer {
	return &MeasurementConsumer{
		subscriber:   subscriber,
		measurements: measurements,
		topic:        topic,
		qos:          qos,
		ingestUserID: ingestUserID,
		logger:       logger,
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (c *MeasurementConsumer) Start(ctx context.Context) error {
	if err := c.subscriber.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to measurement topic: %w", err)
	}
	c.logger.Info("MQTT measurement consumer started", zap.String("topic", c.topic))

	<-ctx.Done()
	return nil
}

func (c *MeasurementConsumer) Stop() {
	if err := c.subscriber.Unsubscribe(c.topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("MQTT measurement consumer stopped")
}

// decodeMessages accepts a single object or an array of objects.
func decodeMessages(payload []byte) ([]MeasurementMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, errors.New("empty payload")
	}
	if trimmed[0] == '[' {
		var msgs []MeasurementMessage
		if err := json.Unmarshal(trimmed, &msgs); err != nil {
			return nil, err
		}
		return msgs, nil
	}
	var msg MeasurementMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, err
	}
	return []MeasurementMessage{msg}, nil
}

func (c *MeasurementConsumer) toRequest(msg MeasurementMessage) (service.CreateMeasurementRequest, error) {
	if msg.Value == nil {
		return service.CreateMeasurementRequest{}, domain.Validationf("value is required")
	}
	for key, v := range map[string]string{"indicator_id": msg.IndicatorID, "region_id": msg.RegionID} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			return service.CreateMeasurementRequest{}, domain.Validationf("invalid %s", key)
		}
	}
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(msg.Date))
	if err != nil {
		return service.CreateMeasurementRequest{}, domain.Validationf("date must be YYYY-MM-DD")
	}
	return service.CreateMeasurementRequest{
		CurrentUserID: c.ingestUserID,
		Channel:       service.ChannelMQTT,
		IndicatorID:   msg.IndicatorID,
		RegionID:      msg.RegionID,
		Value:         *msg.Value,
		Date:          date,
		Source:        msg.Source,
	}, nil
}

// handleMessage processes every item of the batch. A bad item does not stop
// the rest; the returned error joins all item failures.
func (c *MeasurementConsumer) handleMessage(topic string, payload []byte) error {
	msgs, err := decodeMessages(payload)
	if err != nil {
		c.logger.Error("Failed to unmarshal MQTT message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	ctx := context.Background()
	var errs []error
	for i, msg := range msgs {
		req, err := c.toRequest(msg)
		if err == nil {
			var resp *service.CreateMeasurementResponse
			resp, err = c.measurements.CreateMeasurement(ctx, req)
			if err == nil && resp.Alert != nil {
				c.logger.Info("Ingested measurement raised alert",
					zap.String("measurement_id", resp.Measurement.MeasurementID),
					zap.String("alert_id", resp.Alert.AlertID),
					zap.String("severity", string(resp.Alert.Severity)),
				)
			}
		}
		if err != nil {
			c.logger.Warn("Rejected MQTT measurement",
				zap.String("topic", topic),
				zap.Int("index", i),
				zap.String("indicator_id", msg.IndicatorID),
				zap.String("region_id", msg.RegionID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
