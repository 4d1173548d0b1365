package consumer

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSConsumer 直连 WebSocket 数据源的消费者。
// 连接断开后指数退避重连（1s 起步，30s 封顶），重连成功重置退避。
// 断开重连只更新连接状态，处理器状态不重置。
type WSConsumer struct {
	url      string
	pipeline *Pipeline
	status   *ConnectionStatus
	logger   *zap.Logger
}

// NewWSConsumer 创建 WebSocket 数据源消费者
func NewWSConsumer(url string, pipeline *Pipeline, status *ConnectionStatus, logger *zap.Logger) *WSConsumer {
	return &WSConsumer{
		url:      url,
		pipeline: pipeline,
		status:   status,
		logger:   logger,
	}
}

// Run 连接并持续读取，阻塞直到 ctx 取消
func (c *WSConsumer) Run(ctx context.Context) {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		if ctx.Err() != nil {
			c.status.Set(StatusDisconnected)
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.status.Set(StatusReconnecting)
			c.logger.Warn("Failed to connect posture feed",
				zap.String("url", c.url),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				c.status.Set(StatusDisconnected)
				return
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}

		c.status.Set(StatusConnected)
		c.logger.Info("Posture feed connected", zap.String("url", c.url))
		backoff = time.Second

		c.readLoop(ctx, conn)

		if ctx.Err() != nil {
			c.status.Set(StatusDisconnected)
			return
		}
		c.status.Set(StatusReconnecting)
	}
}

// readLoop 读取消息帧直到连接断开或 ctx 取消
func (c *WSConsumer) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	// ReadMessage 阻塞期间由这里负责在 ctx 取消时关闭连接
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if ctx.Err() == nil {
				c.logger.Warn("Posture feed read failed", zap.Error(err))
			}
			return
		}
		c.pipeline.Enqueue(data)
	}
}
