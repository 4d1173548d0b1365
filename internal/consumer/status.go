package consumer

import (
	"sync"

	"github.com/zakki2007-hub/PostureAnalyze/internal/metrics"
)

// 连接状态取值
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusReconnecting = "reconnecting"
)

// ConnectionStatus 数据源连接状态。消费者写、状态接口读；
// 连接断开重连只改这里，处理器状态不受影响。
type ConnectionStatus struct {
	mu    sync.RWMutex
	value string
}

// NewConnectionStatus 创建连接状态，初始为 disconnected
func NewConnectionStatus() *ConnectionStatus {
	return &ConnectionStatus{value: StatusDisconnected}
}

// Set 更新连接状态
func (s *ConnectionStatus) Set(value string) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	if value == StatusConnected {
		metrics.FeedConnected.Set(1)
	} else {
		metrics.FeedConnected.Set(0)
	}
}

// Get 读取当前连接状态
func (s *ConnectionStatus) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}
