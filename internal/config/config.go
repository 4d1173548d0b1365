package config

import (
	"os"
	"strconv"
)

// Config 姿势分析服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// 数据源配置
	Feed struct {
		Mode      string // "mqtt" 或 "websocket"
		WSURL     string // websocket 模式下的数据源地址
		DeviceID  string // 设备标识，拼入订阅/下发主题
		QueueSize int    // pipeline 入队缓冲大小
	}

	// 模拟数据发生器配置（posture-feeder 专用）
	Feeder struct {
		ClientID string // 独立的 MQTT ClientID，避免与分析服务互踢
		Interval int    // 发布间隔，秒
	}

	// 历史日志配置
	History struct {
		Key string // Redis 列表键
	}

	// 实时快照缓存配置
	Snapshot struct {
		Key string
		TTL int // 秒
	}

	// 报警输出配置
	Alarm struct {
		StreamKey      string // 报警事件 Redis Stream 键
		CloudURL       string // 云端报警回调地址，为空则禁用
		ArchiveEnabled bool   // 是否写入 PostgreSQL 归档
	}

	HTTP struct {
		Addr string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量 + 默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "posture")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "posture-analyze")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Feed.Mode = getEnv("FEED_MODE", "mqtt")
	cfg.Feed.WSURL = getEnv("FEED_WS_URL", "ws://localhost:5000/posture")
	cfg.Feed.DeviceID = getEnv("DEVICE_ID", "chair-01")
	cfg.Feed.QueueSize = parseInt(getEnv("FEED_QUEUE_SIZE", "64"), 64)

	cfg.Feeder.ClientID = getEnv("FEEDER_CLIENT_ID", "posture-feeder")
	cfg.Feeder.Interval = parseInt(getEnv("FEEDER_INTERVAL", "1"), 1)

	cfg.History.Key = getEnv("HISTORY_KEY", "posture_logs")

	cfg.Snapshot.Key = getEnv("SNAPSHOT_KEY", "posture:realtime")
	cfg.Snapshot.TTL = parseInt(getEnv("SNAPSHOT_TTL", "60"), 60)

	cfg.Alarm.StreamKey = getEnv("ALARM_STREAM_KEY", "posture:alarm:stream")
	cfg.Alarm.CloudURL = getEnv("CLOUD_ALARM_URL", "")
	cfg.Alarm.ArchiveEnabled = getEnv("DB_ENABLED", "false") == "true"

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
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
