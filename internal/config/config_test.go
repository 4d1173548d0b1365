package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "posture", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "posture-analyze", cfg.MQTT.ClientID)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "mqtt", cfg.Feed.Mode)
	assert.Equal(t, "chair-01", cfg.Feed.DeviceID)
	assert.Equal(t, 64, cfg.Feed.QueueSize)

	assert.Equal(t, "posture_logs", cfg.History.Key)
	assert.Equal(t, "posture:realtime", cfg.Snapshot.Key)
	assert.Equal(t, 60, cfg.Snapshot.TTL)

	assert.Equal(t, "posture:alarm:stream", cfg.Alarm.StreamKey)
	assert.Equal(t, "", cfg.Alarm.CloudURL)
	assert.False(t, cfg.Alarm.ArchiveEnabled)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("MQTT_BROKER", "tcp://test-broker:1883")
	os.Setenv("MQTT_QOS", "2")
	os.Setenv("FEED_MODE", "websocket")
	os.Setenv("DEVICE_ID", "chair-42")
	os.Setenv("DB_ENABLED", "true")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证环境变量覆盖
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "tcp://test-broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, "websocket", cfg.Feed.Mode)
	assert.Equal(t, "chair-42", cfg.Feed.DeviceID)
	assert.True(t, cfg.Alarm.ArchiveEnabled)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 清理环境变量
	os.Clearenv()
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	os.Setenv("FEED_QUEUE_SIZE", "not-a-number")
	os.Setenv("SNAPSHOT_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Feed.QueueSize)
	assert.Equal(t, 60, cfg.Snapshot.TTL)

	os.Clearenv()
}

func TestGetEnv(t *testing.T) {
	// 测试默认值
	os.Clearenv()
	value := getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "default-value", value)

	// 测试环境变量存在
	os.Setenv("TEST_KEY", "env-value")
	value = getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "env-value", value)

	// 清理
	os.Unsetenv("TEST_KEY")
}

func TestGetDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db-host",
		Port:     5433,
		User:     "posture",
		Password: "secret",
		Database: "posture",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "host=db-host")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=posture")
	assert.Contains(t, dsn, "sslmode=disable")
}
