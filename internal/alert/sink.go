package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"go.uber.org/zap"
)

// Sink 震动触达通道。Available 是能力探测，不保证后续投递成功；
// Trigger 返回错误即视为本次触发失败，冷却时间戳不推进。
type Sink interface {
	Available() bool
	Trigger(ctx context.Context, cmd *models.VibrateCommand) error
}

// commandPublisher 下发震动指令所需的最小 MQTT 能力
type commandPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
}

// VibrationSink 通过 MQTT 向设备下发震动指令
type VibrationSink struct {
	publisher commandPublisher
	topic     string
	qos       byte
	logger    *zap.Logger
}

// NewVibrationSink 创建震动触达通道
func NewVibrationSink(publisher commandPublisher, deviceID string, qos byte, logger *zap.Logger) *VibrationSink {
	return &VibrationSink{
		publisher: publisher,
		topic:     fmt.Sprintf("posture/%s/vibrate", deviceID),
		qos:       qos,
		logger:    logger,
	}
}

// Available 设备当前是否可达
func (s *VibrationSink) Available() bool {
	return s.publisher.IsConnected()
}

// Trigger 下发一次震动。停机开始后（ctx 已取消）不再下发。
func (s *VibrationSink) Trigger(ctx context.Context, cmd *models.VibrateCommand) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("vibration skipped: %w", err)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal vibrate command: %w", err)
	}

	if err := s.publisher.Publish(s.topic, s.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish vibrate command: %w", err)
	}

	s.logger.Info("Vibration triggered",
		zap.String("event_type", cmd.EventType),
		zap.Int64s("pattern", cmd.Pattern),
	)

	return nil
}
