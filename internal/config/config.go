package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "agsavn-data/common/config"
)

// Config agsavn-data (HTTP API + optional MQTT ingestion)
type Config struct {
	HTTP struct {
		Addr string
	}
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	Log      struct {
		Level  string
		Format string
	}
	MQTT   MQTTConfig
	Alerts AlertsConfig
	Stats  struct {
		CacheTTL time.Duration
	}
}

// MQTTConfig measurement ingestion over MQTT (disabled by default)
type MQTTConfig struct {
	Enabled bool
	commoncfg.MQTTConfig
	Topic string
	// IngestUserID is recorded as the actor for activity logs of ingested measurements.
	IngestUserID string
}

// AlertsConfig where newly created alerts are announced
type AlertsConfig struct {
	Stream       string
	StreamMaxLen int64
	WebhookURL   string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "agsavn",
		SSLMode:  "disable",
		MaxConns: 25,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.MQTTConfig = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "agsavn-data-ingest",
		QoS:      1,
	}
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "agsavn/measurements")
	cfg.MQTT.IngestUserID = getEnv("INGEST_USER_ID", "")

	cfg.Alerts.Stream = getEnv("ALERT_STREAM", "agsavn:alerts")
	cfg.Alerts.StreamMaxLen = int64(parseInt(getEnv("ALERT_STREAM_MAXLEN", "10000"), 10000))
	cfg.Alerts.WebhookURL = getEnv("ALERT_WEBHOOK_URL", "")

	cfg.Stats.CacheTTL = time.Duration(parseInt(getEnv("STATS_CACHE_TTL", "60"), 60)) * time.Second

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
