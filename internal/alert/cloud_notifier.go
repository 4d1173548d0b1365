package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CloudNotifier 把触发的报警事件上报到云端回调地址。
// 上报失败只记日志，不影响本地处理链路。
type CloudNotifier struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewCloudNotifier 创建云端报警上报客户端
func NewCloudNotifier(baseURL string, logger *zap.Logger) *CloudNotifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &CloudNotifier{
		httpClient: client,
		logger:     logger,
	}
}

// Notify 上报一条报警事件
func (n *CloudNotifier) Notify(ctx context.Context, event *models.AlarmEvent) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post("/alarm/posture")

	if err != nil {
		return fmt.Errorf("failed to notify cloud: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("cloud alarm endpoint returned status %d", resp.StatusCode())
	}

	n.logger.Info("Alarm reported to cloud",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)

	return nil
}
