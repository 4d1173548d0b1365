package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"go.uber.org/zap"
)

// AlarmEventsRepository 报警事件归档仓库（PostgreSQL）
type AlarmEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlarmEventsRepository 创建报警事件仓库
func NewAlarmEventsRepository(db *sql.DB, logger *zap.Logger) *AlarmEventsRepository {
	return &AlarmEventsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAlarmEvent 写入一条报警事件
func (r *AlarmEventsRepository) CreateAlarmEvent(ctx context.Context, event *models.AlarmEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if event.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	query := `
		INSERT INTO posture_alarm_events (
			event_id,
			device_id,
			event_type,
			pattern,
			posture_text,
			sit_time,
			triggered_at,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.DeviceID,
		event.EventType,
		event.Pattern,
		event.PostureText,
		event.SitTime,
		event.TriggeredAt,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create alarm event: %w", err)
	}

	return nil
}

// ListAlarmEvents 按触发时间倒序返回最近的报警事件
func (r *AlarmEventsRepository) ListAlarmEvents(ctx context.Context, limit int) ([]*models.AlarmEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			event_id,
			device_id,
			event_type,
			pattern,
			posture_text,
			sit_time,
			triggered_at,
			created_at
		FROM posture_alarm_events
		ORDER BY triggered_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarm events: %w", err)
	}
	defer rows.Close()

	var events []*models.AlarmEvent
	for rows.Next() {
		var event models.AlarmEvent
		if err := rows.Scan(
			&event.EventID,
			&event.DeviceID,
			&event.EventType,
			&event.Pattern,
			&event.PostureText,
			&event.SitTime,
			&event.TriggeredAt,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alarm event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarm events: %w", err)
	}

	return events, nil
}
