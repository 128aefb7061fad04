package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agsavn-data/internal/domain"
)

func sampleEvent() AlertEvent {
	return AlertEvent{
		AlertID:        "a1",
		MeasurementID:  "m1",
		IndicatorID:    "i1",
		IndicatorName:  "Rainfall",
		RegionID:       "r1",
		Severity:       domain.SeverityCritical,
		ThresholdType:  domain.ThresholdLow,
		ThresholdValue: 10,
		Value:          5,
		Date:           "2024-05-01",
		CreatedAt:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestStreamNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamNotifier(client, "agsavn:alerts", 0, zap.NewNop())
	require.NoError(t, n.NotifyAlertCreated(context.Background(), sampleEvent()))

	entries, err := client.XRange(context.Background(), "agsavn:alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, AlertCreatedEventType, entries[0].Values["type"])

	var got AlertEvent
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &got))
	assert.Equal(t, "a1", got.AlertID)
	assert.Equal(t, domain.SeverityCritical, got.Severity)
}

func TestWebhookNotifier(t *testing.T) {
	var body webhookBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zap.NewNop())
	require.NoError(t, n.NotifyAlertCreated(context.Background(), sampleEvent()))
	assert.Equal(t, AlertCreatedEventType, body.Type)
	assert.Equal(t, "Rainfall", body.Alert.IndicatorName)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zap.NewNop())
	err := n.NotifyAlertCreated(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestMultiNotifier_JoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("sink down")}

	err := MultiNotifier{ok, bad}.NotifyAlertCreated(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, bad.events, 1)

	assert.NoError(t, NopNotifier{}.NotifyAlertCreated(context.Background(), sampleEvent()))
}
