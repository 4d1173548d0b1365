package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
	"github.com/zakki2007-hub/PostureAnalyze/internal/repository"

	"go.uber.org/zap"
)

// HistoryStore 历史日志读取与清空能力
type HistoryStore interface {
	List(ctx context.Context) ([]models.LogEntry, error)
	Clear(ctx context.Context) error
}

// SnapshotStore 实时快照读取能力
type SnapshotStore interface {
	Get(ctx context.Context) (*models.PostureSnapshot, error)
}

// AlarmStore 报警事件查询能力
type AlarmStore interface {
	ListAlarmEvents(ctx context.Context, limit int) ([]*models.AlarmEvent, error)
}

// StatusSource 数据源连接状态读取能力
type StatusSource interface {
	Get() string
}

// PostureHandler 姿势数据 HTTP 处理器
type PostureHandler struct {
	history  HistoryStore
	snapshot SnapshotStore
	alarms   AlarmStore // 归档未启用时为 nil
	status   StatusSource
	logger   *zap.Logger
}

// NewPostureHandler 创建姿势数据处理器
func NewPostureHandler(
	history HistoryStore,
	snapshot SnapshotStore,
	alarms AlarmStore,
	status StatusSource,
	logger *zap.Logger,
) *PostureHandler {
	return &PostureHandler{
		history:  history,
		snapshot: snapshot,
		alarms:   alarms,
		status:   status,
		logger:   logger,
	}
}

// GetHistory 返回全部历史日志，最新在前。
// 存储读取失败降级为空列表，前端照常渲染。
func (h *PostureHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Warn("Failed to read posture history", zap.Error(err))
		writeJSON(w, http.StatusOK, Ok([]models.LogEntry{}))
		return
	}

	writeJSON(w, http.StatusOK, Ok(entries))
}

// ClearHistory 一次性清空全部历史，不可恢复
func (h *PostureHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to clear posture history", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to clear history"))
		return
	}

	h.logger.Info("Posture history cleared")
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// ExportHistory 把历史日志导出为 xlsx 附件
func (h *PostureHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Warn("Failed to read posture history for export", zap.Error(err))
		entries = []models.LogEntry{}
	}

	data, err := GenerateHistoryExport(entries)
	if err != nil {
		h.logger.Error("Failed to generate history export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate export"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=posture-history.xlsx")
	_, _ = w.Write(data)
}

// GetStatus 返回连接状态和最新姿势快照。
// 快照缓存未命中时返回零值快照，连接状态始终取自实时状态。
func (h *PostureHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshot.Get(r.Context())
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			h.logger.Warn("Failed to read posture snapshot", zap.Error(err))
		}
		snapshot = &models.PostureSnapshot{}
	}

	snapshot.Connection = h.status.Get()
	writeJSON(w, http.StatusOK, Ok(snapshot))
}

// GetAlarmEvents 返回最近的报警事件（triggered_at 倒序）
func (h *PostureHandler) GetAlarmEvents(w http.ResponseWriter, r *http.Request) {
	if h.alarms == nil {
		writeJSON(w, http.StatusOK, Ok([]*models.AlarmEvent{}))
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	events, err := h.alarms.ListAlarmEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list alarm events", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list alarm events"))
		return
	}
	if events == nil {
		events = []*models.AlarmEvent{}
	}

	writeJSON(w, http.StatusOK, Ok(events))
}
