package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "aqua",
		Password: "secret",
		Database: "water",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=aqua password=secret dbname=water sslmode=disable", cfg.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "pg.local")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "readings")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := DatabaseConfig{Host: "localhost", Port: 5432, MaxConns: 10}
	cfg.LoadFromEnv("DB")

	assert.Equal(t, "pg.local", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "readings", cfg.Database)
	assert.Equal(t, 10, cfg.MaxConns)
}

func TestRedisAndMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_QOS", "5")

	redisCfg := RedisConfig{Addr: "localhost:6379"}
	redisCfg.LoadFromEnv("REDIS")
	assert.Equal(t, "cache:6380", redisCfg.Addr)
	assert.Equal(t, 2, redisCfg.DB)

	mqttCfg := MQTTConfig{QoS: 1}
	mqttCfg.LoadFromEnv("MQTT")
	assert.Equal(t, "tcp://broker:1883", mqttCfg.Broker)
	assert.Equal(t, byte(1), mqttCfg.QoS)
}
