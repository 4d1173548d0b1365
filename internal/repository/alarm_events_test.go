package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockAlarmEventsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlarmEventsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewAlarmEventsRepository(db, zap.NewNop())

	return db, mock, repo
}

func TestCreateAlarmEvent_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	event := &models.AlarmEvent{
		EventID:     uuid.New().String(),
		DeviceID:    "chair-01",
		EventType:   "Sedentary",
		Pattern:     "[0,800,400,800]",
		PostureText: "Time to Stand up!",
		SitTime:     2735,
		TriggeredAt: time.Now(),
		CreatedAt:   time.Now(),
	}

	mock.ExpectExec(`INSERT INTO posture_alarm_events`).
		WithArgs(
			event.EventID,
			event.DeviceID,
			event.EventType,
			event.Pattern,
			event.PostureText,
			event.SitTime,
			event.TriggeredAt,
			event.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateAlarmEvent(context.Background(), event)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlarmEvent_MissingEventID(t *testing.T) {
	db, _, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	event := &models.AlarmEvent{
		DeviceID:  "chair-01",
		EventType: "BadPosture",
	}

	err := repo.CreateAlarmEvent(context.Background(), event)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "event_id is required")
}

func TestCreateAlarmEvent_MissingDeviceID(t *testing.T) {
	db, _, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	event := &models.AlarmEvent{
		EventID:   uuid.New().String(),
		EventType: "BadPosture",
	}

	err := repo.CreateAlarmEvent(context.Background(), event)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "device_id is required")
}

func TestCreateAlarmEvent_DBError(t *testing.T) {
	db, mock, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	event := &models.AlarmEvent{
		EventID:     uuid.New().String(),
		DeviceID:    "chair-01",
		EventType:   "BadPosture",
		Pattern:     "[0,500]",
		PostureText: "Hunchback (angle)",
		TriggeredAt: time.Now(),
		CreatedAt:   time.Now(),
	}

	mock.ExpectExec(`INSERT INTO posture_alarm_events`).
		WillReturnError(sql.ErrConnDone)

	err := repo.CreateAlarmEvent(context.Background(), event)

	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlarmEvents_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"event_id", "device_id", "event_type", "pattern",
		"posture_text", "sit_time", "triggered_at", "created_at",
	}).AddRow(
		"evt-2", "chair-01", "Sedentary", "[0,800,400,800]",
		"Time to Stand up!", 2750, now, now,
	).AddRow(
		"evt-1", "chair-01", "BadPosture", "[0,500]",
		"Hunchback (angle)", 120, now.Add(-time.Minute), now.Add(-time.Minute),
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(10).
		WillReturnRows(rows)

	events, err := repo.ListAlarmEvents(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-2", events[0].EventID)
	assert.Equal(t, "Sedentary", events[0].EventType)
	assert.Equal(t, 2750, events[0].SitTime)
	assert.Equal(t, "evt-1", events[1].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlarmEvents_DefaultLimit(t *testing.T) {
	db, mock, repo := setupMockAlarmEventsDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"event_id", "device_id", "event_type", "pattern",
		"posture_text", "sit_time", "triggered_at", "created_at",
	})

	// limit <= 0 时回落到默认 50
	mock.ExpectQuery(`SELECT`).
		WithArgs(50).
		WillReturnRows(rows)

	events, err := repo.ListAlarmEvents(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}
