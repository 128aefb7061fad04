package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_NAME", "DB_PORT", "MQTT_ENABLED", "ALERT_STREAM", "ALERT_STREAM_MAXLEN", "STATS_CACHE_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "agsavn", cfg.Database.Database)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "agsavn:alerts", cfg.Alerts.Stream)
	assert.Equal(t, int64(10000), cfg.Alerts.StreamMaxLen)
	assert.Equal(t, 60*time.Second, cfg.Stats.CacheTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_TOPIC", "region/+/measurements")
	t.Setenv("INGEST_USER_ID", "u-ingest")
	t.Setenv("ALERT_WEBHOOK_URL", "http://hooks.local/alerts")
	t.Setenv("STATS_CACHE_TTL", "5")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "region/+/measurements", cfg.MQTT.Topic)
	assert.Equal(t, "u-ingest", cfg.MQTT.IngestUserID)
	assert.Equal(t, "http://hooks.local/alerts", cfg.Alerts.WebhookURL)
	assert.Equal(t, 5*time.Second, cfg.Stats.CacheTTL)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	assert.Equal(t, 5432, Load().Database.Port)
}
