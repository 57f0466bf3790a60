package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	commoncfg "aquawatch/common/config"
)

// Feature set names accepted by FEATURE_SET.
const (
	FeatureSetFull   = "full"
	FeatureSetSensor = "sensor"
)

// Config aquawatch service configuration
type Config struct {
	HTTP struct {
		Addr string
	}

	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig
	Topics      struct {
		Reading      string // subscription filter, e.g. water/+/reading
		ResultSuffix string // label is published to water/{device}/{suffix}
	}

	Model struct {
		Path       string // local path or s3://bucket/key
		S3Region   string
		FeatureSet string
	}

	Stats struct {
		CacheTTLSec int
		Window      int
	}

	Notify struct {
		StreamName string
		StreamMax  int64
		QueueSize  int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment. Callers load .env first.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8000")

	// DB defaults off: readings fall back to the in-memory repository
	cfg.DBEnabled = parseBool(getEnv("DB_ENABLED", "false"), false)
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "aquawatch",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = parseBool(getEnv("REDIS_ENABLED", "false"), false)
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTTEnabled = parseBool(getEnv("MQTT_ENABLED", "false"), false)
	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "aquawatch-server",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.Topics.Reading = getEnv("MQTT_READING_TOPIC", "water/+/reading")
	cfg.Topics.ResultSuffix = getEnv("MQTT_RESULT_SUFFIX", "potability")

	cfg.Model.Path = getEnv("MODEL_PATH", "models/water_quality_model.json")
	cfg.Model.S3Region = getEnv("MODEL_S3_REGION", "us-east-1")
	cfg.Model.FeatureSet = strings.ToLower(getEnv("FEATURE_SET", FeatureSetFull))

	cfg.Stats.CacheTTLSec = parseInt(getEnv("STATS_CACHE_TTL_SEC", "10"), 10)
	cfg.Stats.Window = parseInt(getEnv("STATS_WINDOW", "1000"), 1000)

	cfg.Notify.StreamName = getEnv("STREAM_NAME", "water:readings:stream")
	cfg.Notify.StreamMax = int64(parseInt(getEnv("STREAM_MAX_LEN", "10000"), 10000))
	cfg.Notify.QueueSize = parseInt(getEnv("NOTIFY_QUEUE_SIZE", "256"), 256)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Model.FeatureSet {
	case FeatureSetFull, FeatureSetSensor:
	default:
		return fmt.Errorf("invalid FEATURE_SET %q: want %q or %q", c.Model.FeatureSet, FeatureSetFull, FeatureSetSensor)
	}
	if c.Stats.Window <= 0 {
		return fmt.Errorf("invalid STATS_WINDOW %d: must be positive", c.Stats.Window)
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("invalid NOTIFY_QUEUE_SIZE %d: must be positive", c.Notify.QueueSize)
	}
	return nil
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

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
