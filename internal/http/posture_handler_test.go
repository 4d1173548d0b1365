package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
	"github.com/zakki2007-hub/PostureAnalyze/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ============================================================================
// 测试替身
// ============================================================================

type fakeHistoryStore struct {
	entries  []models.LogEntry
	listErr  error
	clearErr error
	cleared  bool
}

func (f *fakeHistoryStore) List(ctx context.Context) ([]models.LogEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeHistoryStore) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	f.entries = nil
	return nil
}

type fakeSnapshotStore struct {
	snapshot *models.PostureSnapshot
	err      error
}

func (f *fakeSnapshotStore) Get(ctx context.Context) (*models.PostureSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeAlarmStore struct {
	events   []*models.AlarmEvent
	err      error
	gotLimit int
}

func (f *fakeAlarmStore) ListAlarmEvents(ctx context.Context, limit int) ([]*models.AlarmEvent, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeStatus struct {
	value string
}

func (f *fakeStatus) Get() string {
	return f.value
}

func setupRouter(history *fakeHistoryStore, snapshot *fakeSnapshotStore, alarms AlarmStore, status *fakeStatus) *Router {
	handler := NewPostureHandler(history, snapshot, alarms, status, zap.NewNop())
	router := NewRouter(zap.NewNop())
	router.RegisterPostureRoutes(handler)
	router.RegisterSystemRoutes()
	return router
}

// ============================================================================
// 历史日志接口
// ============================================================================

func TestGetHistory_Success(t *testing.T) {
	history := &fakeHistoryStore{entries: []models.LogEntry{
		{Time: "14:30:02", Date: "2025-03-10", Status: "Hunchback (angle)", IsBad: true},
		{Time: "14:30:00", Date: "2025-03-10", Status: "Good (angle)", IsBad: false},
	}}
	router := setupRouter(history, &fakeSnapshotStore{}, nil, &fakeStatus{value: "connected"})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result[[]models.LogEntry]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	require.Len(t, result.Result, 2)
	assert.Equal(t, "Hunchback (angle)", result.Result[0].Status)
	assert.Equal(t, "Good (angle)", result.Result[1].Status)
}

func TestGetHistory_StoreFailureDegradesToEmpty(t *testing.T) {
	history := &fakeHistoryStore{listErr: errors.New("redis down")}
	router := setupRouter(history, &fakeSnapshotStore{}, nil, &fakeStatus{value: "connected"})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result[[]models.LogEntry]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Empty(t, result.Result)
}

func TestGetHistory_MethodNotAllowed(t *testing.T) {
	router := setupRouter(&fakeHistoryStore{}, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodPost, "/posture/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestClearHistory_Success(t *testing.T) {
	history := &fakeHistoryStore{entries: []models.LogEntry{
		{Status: "Good (angle)"},
	}}
	router := setupRouter(history, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodPost, "/posture/api/v1/history/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, history.cleared)

	var result Result[map[string]any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, true, result.Result["success"])
}

func TestClearHistory_Failure(t *testing.T) {
	history := &fakeHistoryStore{clearErr: errors.New("redis down")}
	router := setupRouter(history, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodPost, "/posture/api/v1/history/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultError, result.Code)
}

func TestClearHistory_MethodNotAllowed(t *testing.T) {
	router := setupRouter(&fakeHistoryStore{}, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/history/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ============================================================================
// 导出接口
// ============================================================================

func TestExportHistory_ReturnsXlsxAttachment(t *testing.T) {
	history := &fakeHistoryStore{entries: []models.LogEntry{
		{Time: "14:30:02", Date: "2025-03-10", Status: "Hunchback (angle)", IsBad: true},
	}}
	router := setupRouter(history, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/history/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "posture-history.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	status, err := f.GetCellValue("Posture History", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Hunchback (angle)", status)

	date, err := f.GetCellValue("Posture History", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", date)
}

// ============================================================================
// 状态接口
// ============================================================================

func TestGetStatus_WithSnapshot(t *testing.T) {
	snapshot := &fakeSnapshotStore{snapshot: &models.PostureSnapshot{
		PostureText:  "Good (angle)",
		IsBad:        false,
		SitTime:      120,
		PressureData: []float64{0.25, 0.25, 0.25, 0.25},
		Connection:   "stale-value",
		UpdatedAt:    1741600200,
	}}
	router := setupRouter(&fakeHistoryStore{}, snapshot, nil, &fakeStatus{value: "connected"})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result[models.PostureSnapshot]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, "Good (angle)", result.Result.PostureText)
	assert.Equal(t, 120, result.Result.SitTime)
	// 连接状态始终取实时值，不用缓存里的旧值
	assert.Equal(t, "connected", result.Result.Connection)
}

func TestGetStatus_CacheMiss(t *testing.T) {
	snapshot := &fakeSnapshotStore{err: repository.ErrCacheMiss}
	router := setupRouter(&fakeHistoryStore{}, snapshot, nil, &fakeStatus{value: "disconnected"})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result[models.PostureSnapshot]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, "", result.Result.PostureText)
	assert.Equal(t, "disconnected", result.Result.Connection)
}

// ============================================================================
// 报警事件接口
// ============================================================================

func TestGetAlarmEvents_Success(t *testing.T) {
	alarms := &fakeAlarmStore{events: []*models.AlarmEvent{
		{EventID: "evt-1", EventType: "Sedentary"},
	}}
	router := setupRouter(&fakeHistoryStore{}, &fakeSnapshotStore{}, alarms, &fakeStatus{})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/alarm-events?limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result[[]*models.AlarmEvent]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	require.Len(t, result.Result, 1)
	assert.Equal(t, "evt-1", result.Result[0].EventID)
	assert.Equal(t, 10, alarms.gotLimit)
}

func TestGetAlarmEvents_ArchiveDisabled(t *testing.T) {
	router := setupRouter(&fakeHistoryStore{}, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodGet, "/posture/api/v1/alarm-events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result[[]*models.AlarmEvent]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Empty(t, result.Result)
}

// ============================================================================
// 系统路由
// ============================================================================

func TestHealthz(t *testing.T) {
	router := setupRouter(&fakeHistoryStore{}, &fakeSnapshotStore{}, nil, &fakeStatus{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
