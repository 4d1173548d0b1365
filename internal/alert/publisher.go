package alert

import (
	"context"
	"fmt"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
	redispkg "github.com/zakki2007-hub/PostureAnalyze/internal/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AlarmPublisher 把触发的报警事件发布到 Redis Stream，供下游消费者接入
type AlarmPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewAlarmPublisher 创建报警事件发布器
func NewAlarmPublisher(client *redis.Client, stream string, logger *zap.Logger) *AlarmPublisher {
	return &AlarmPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish 发布一条报警事件
func (p *AlarmPublisher) Publish(ctx context.Context, event *models.AlarmEvent) error {
	id, err := redispkg.PublishJSONToStream(ctx, p.client, p.stream, event)
	if err != nil {
		return fmt.Errorf("failed to publish alarm event: %w", err)
	}

	p.logger.Debug("Alarm event published to stream",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
	)

	return nil
}
