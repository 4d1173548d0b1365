package consumer

import (
	"fmt"

	"github.com/zakki2007-hub/PostureAnalyze/internal/mqtt"

	"go.uber.org/zap"
)

// MQTTConsumer 订阅姿势数据主题并把原始消息入队。
// 订阅回调只做入队，解析和决策都在 pipeline 的消费 goroutine 里，
// 消息顺序即 broker 投递顺序。
type MQTTConsumer struct {
	client   *mqtt.Client
	topic    string
	qos      byte
	pipeline *Pipeline
	status   *ConnectionStatus
	logger   *zap.Logger
}

// NewMQTTConsumer 创建 MQTT 数据源消费者
func NewMQTTConsumer(
	client *mqtt.Client,
	deviceID string,
	qos byte,
	pipeline *Pipeline,
	status *ConnectionStatus,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		client:   client,
		topic:    fmt.Sprintf("posture/%s/update", deviceID),
		qos:      qos,
		pipeline: pipeline,
		status:   status,
		logger:   logger,
	}
}

// Start 建立订阅并注册重连回调。
// CleanSession 下订阅不保留，自动重连成功后需要重建。
func (c *MQTTConsumer) Start() error {
	if err := c.subscribe(); err != nil {
		return err
	}
	c.status.Set(StatusConnected)

	c.client.OnConnect(func() {
		c.status.Set(StatusConnected)
		if err := c.subscribe(); err != nil {
			c.logger.Error("Failed to restore posture subscription", zap.Error(err))
		}
	})
	c.client.OnConnectionLost(func(err error) {
		c.status.Set(StatusReconnecting)
	})

	c.logger.Info("MQTT consumer started", zap.String("topic", c.topic))

	return nil
}

func (c *MQTTConsumer) subscribe() error {
	return c.client.Subscribe(c.topic, c.qos, func(topic string, payload []byte) error {
		c.pipeline.Enqueue(payload)
		return nil
	})
}

// Stop 取消订阅
func (c *MQTTConsumer) Stop() {
	if err := c.client.Unsubscribe(c.topic); err != nil {
		c.logger.Warn("Failed to unsubscribe posture topic", zap.Error(err))
	}
	c.status.Set(StatusDisconnected)
}
