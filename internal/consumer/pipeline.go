package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/alert"
	"github.com/zakki2007-hub/PostureAnalyze/internal/metrics"
	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
	"github.com/zakki2007-hub/PostureAnalyze/internal/processor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 单次存储操作的超时
const storeTimeout = 5 * time.Second

// HistoryStore 历史日志写入能力
type HistoryStore interface {
	Append(ctx context.Context, entry *models.LogEntry) error
}

// SnapshotStore 实时快照写入能力
type SnapshotStore interface {
	Set(ctx context.Context, snapshot *models.PostureSnapshot) error
}

// AlarmArchive 报警事件持久化能力（可选输出）
type AlarmArchive interface {
	CreateAlarmEvent(ctx context.Context, event *models.AlarmEvent) error
}

// AlarmStreamPublisher 报警事件流发布能力（可选输出）
type AlarmStreamPublisher interface {
	Publish(ctx context.Context, event *models.AlarmEvent) error
}

// CloudReporter 云端报警上报能力（可选输出）
type CloudReporter interface {
	Notify(ctx context.Context, event *models.AlarmEvent) error
}

// Pipeline 姿势更新处理管道。唯一的消费者 goroutine 独占处理器状态，
// 消息只按到达顺序处理，前一条的副作用执行完才取下一条。
// 队列满时 Enqueue 阻塞（背压），可解析的消息不丢弃不合并。
type Pipeline struct {
	updates chan []byte
	state   processor.State

	history  HistoryStore
	snapshot SnapshotStore
	sink     alert.Sink

	// 可选输出，为 nil 时跳过
	archive AlarmArchive
	stream  AlarmStreamPublisher
	cloud   CloudReporter

	deviceID string
	status   *ConnectionStatus
	now      func() time.Time
	logger   *zap.Logger

	done chan struct{}
}

// NewPipeline 创建处理管道
func NewPipeline(
	queueSize int,
	history HistoryStore,
	snapshot SnapshotStore,
	sink alert.Sink,
	archive AlarmArchive,
	stream AlarmStreamPublisher,
	cloud CloudReporter,
	deviceID string,
	status *ConnectionStatus,
	logger *zap.Logger,
) *Pipeline {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pipeline{
		updates:  make(chan []byte, queueSize),
		history:  history,
		snapshot: snapshot,
		sink:     sink,
		archive:  archive,
		stream:   stream,
		cloud:    cloud,
		deviceID: deviceID,
		status:   status,
		now:      time.Now,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Enqueue 入队一条原始消息。队列满时阻塞，管道停止后静默丢弃。
func (p *Pipeline) Enqueue(payload []byte) {
	select {
	case p.updates <- payload:
		metrics.UpdatesReceived.Inc()
	case <-p.done:
	}
}

// Run 消费循环，阻塞直到 ctx 取消。取消时在途消息的日志写入照常完成，
// 但不再下发震动。
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.done)

	p.logger.Info("Posture pipeline started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Posture pipeline stopped")
			return
		case payload := <-p.updates:
			p.handle(ctx, payload)
		}
	}
}

// handle 处理一条消息：解析、决策、按序执行副作用、提交状态
func (p *Pipeline) handle(runCtx context.Context, payload []byte) {
	start := time.Now()
	defer func() {
		metrics.UpdateHandleDuration.Observe(time.Since(start).Seconds())
	}()

	var update models.PostureUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		metrics.UpdatesDropped.Inc()
		p.logger.Debug("Dropping unparseable update", zap.Error(err))
		return
	}

	now := p.now()
	next, effects := processor.Reduce(p.state, update, now, p.sink.Available())

	for _, effect := range effects {
		switch effect.Kind {
		case processor.EffectLogWrite:
			// 写历史用独立上下文：停机时在途写入仍然完成。
			// 写失败不推进 LastLogTime，下一条符合条件的更新自然重试。
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			err := p.history.Append(ctx, effect.Entry)
			cancel()
			if err != nil {
				metrics.LogWriteFailures.Inc()
				p.logger.Warn("Failed to append history log", zap.Error(err))
			} else {
				metrics.LogWrites.Inc()
				next.LastLogTime = effect.At
			}

		case processor.EffectAlertTrigger:
			// 触发挂在运行上下文上：停机开始后不再震动。
			// 触发失败不推进 LastAlertTime，冷却窗口保持原位。
			if err := p.sink.Trigger(runCtx, effect.Command); err != nil {
				metrics.AlertFailures.Inc()
				p.logger.Warn("Failed to trigger vibration", zap.Error(err))
			} else {
				metrics.AlertsTriggered.WithLabelValues(effect.Command.EventType).Inc()
				next.LastAlertTime = effect.At
				p.recordAlarm(effect.Command, next, now)
			}
		}
	}

	p.state = next
	p.writeSnapshot(now)
}

// recordAlarm 把一次成功触发落库、发流、上报云端。均为次要输出，失败只记日志。
func (p *Pipeline) recordAlarm(cmd *models.VibrateCommand, s processor.State, now time.Time) {
	pattern, err := json.Marshal(cmd.Pattern)
	if err != nil {
		p.logger.Warn("Failed to marshal vibrate pattern", zap.Error(err))
		return
	}

	event := &models.AlarmEvent{
		EventID:     uuid.New().String(),
		DeviceID:    p.deviceID,
		EventType:   cmd.EventType,
		Pattern:     string(pattern),
		PostureText: s.PostureText,
		SitTime:     s.SitTime,
		TriggeredAt: now,
		CreatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if p.archive != nil {
		if err := p.archive.CreateAlarmEvent(ctx, event); err != nil {
			p.logger.Warn("Failed to archive alarm event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}

	if p.stream != nil {
		if err := p.stream.Publish(ctx, event); err != nil {
			p.logger.Warn("Failed to publish alarm event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}

	if p.cloud != nil {
		if err := p.cloud.Notify(ctx, event); err != nil {
			p.logger.Warn("Failed to report alarm to cloud",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}
}

// writeSnapshot 把最新状态写入实时快照缓存
func (p *Pipeline) writeSnapshot(now time.Time) {
	snapshot := &models.PostureSnapshot{
		PostureText:  p.state.PostureText,
		IsBad:        p.state.IsBad,
		SitTime:      p.state.SitTime,
		PressureData: p.state.PressureData,
		Connection:   p.status.Get(),
		UpdatedAt:    now.Unix(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := p.snapshot.Set(ctx, snapshot); err != nil {
		p.logger.Warn("Failed to update realtime snapshot", zap.Error(err))
	}
}
