package mqtt

import (
	"fmt"
	"sync"

	"github.com/zakki2007-hub/PostureAnalyze/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MessageHandler 消息处理函数类型
type MessageHandler func(topic string, payload []byte) error

// Client MQTT 客户端封装。自动重连开启；重连成功会触发已注册的
// OnConnect 回调，订阅方需要在回调里重建订阅（CleanSession 下不保留）。
type Client struct {
	client mqtt.Client
	config *config.MQTTConfig
	logger *zap.Logger

	mu        sync.RWMutex
	onConnect []func()
	onLost    []func(error)
}

// NewClient 创建并连接 MQTT 客户端
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		config: cfg,
		logger: logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	opts.SetOnConnectHandler(func(mc mqtt.Client) {
		logger.Info("MQTT connected", zap.String("broker", cfg.Broker))
		c.fireConnect()
	})
	opts.SetConnectionLostHandler(func(mc mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
		c.fireLost(err)
	})

	c.client = mqtt.NewClient(opts)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return c, nil
}

// OnConnect 注册连接成功回调（含自动重连后）
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnConnectionLost 注册连接断开回调
func (c *Client) OnConnectionLost(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLost = append(c.onLost, fn)
}

func (c *Client) fireConnect() {
	c.mu.RLock()
	fns := make([]func(), len(c.onConnect))
	copy(fns, c.onConnect)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *Client) fireLost(err error) {
	c.mu.RLock()
	fns := make([]func(error), len(c.onLost))
	copy(fns, c.onLost)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// Subscribe 订阅主题。handler 返回错误只记日志，不中断订阅。
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if token := c.client.Subscribe(topic, qos, func(client mqtt.Client, msg mqtt.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("Error handling MQTT message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	return nil
}

// Publish 发布消息
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	return nil
}

// Unsubscribe 取消订阅
func (c *Client) Unsubscribe(topics ...string) error {
	token := c.client.Unsubscribe(topics...)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to unsubscribe: %w", token.Error())
	}

	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	c.client.Disconnect(250) // 250ms 等待时间
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
