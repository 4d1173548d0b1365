package models

import (
	"time"
)

// AlarmEvent 报警事件（对应 posture_alarm_events 表）
type AlarmEvent struct {
	EventID     string    `json:"event_id" db:"event_id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	EventType   string    `json:"event_type" db:"event_type"` // BadPosture, Sedentary
	Pattern     string    `json:"pattern" db:"pattern"`       // JSON 数组，震动波形毫秒数
	PostureText string    `json:"posture_text" db:"posture_text"`
	SitTime     int       `json:"sit_time" db:"sit_time"`
	TriggeredAt time.Time `json:"triggered_at" db:"triggered_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
