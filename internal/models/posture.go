package models

// PostureUpdate 服务端 server_update 消息（树莓派姿势摄像头推送）
// 所有字段均可缺省：缺省字段的合并规则由 processor 决定
type PostureUpdate struct {
	PostureText  *string   `json:"posture_text,omitempty"`
	IsBad        *bool     `json:"is_bad,omitempty"`
	SitTime      *int      `json:"sit_time,omitempty"`
	PressureData []float64 `json:"pressure_data,omitempty"`
}

// LogEntry 姿势历史日志条目（Redis posture_logs 列表元素，写入后不可变）
type LogEntry struct {
	Time   string `json:"time"`   // HH:MM:SS
	Date   string `json:"date"`   // YYYY-MM-DD
	Status string `json:"status"` // posture_text 快照
	IsBad  bool   `json:"is_bad"`
}

// PostureSnapshot 实时姿势快照（Redis posture:realtime 缓存值，供状态接口读取）
type PostureSnapshot struct {
	PostureText  string    `json:"posture_text"`
	IsBad        bool      `json:"is_bad"`
	SitTime      int       `json:"sit_time"`
	PressureData []float64 `json:"pressure_data"`
	Connection   string    `json:"connection"` // connected, disconnected, reconnecting
	UpdatedAt    int64     `json:"updated_at"` // Unix 秒
}

// VibrateCommand 设备震动指令（发布到 posture/{device}/vibrate）
type VibrateCommand struct {
	Pattern   []int64 `json:"pattern"`    // 震动波形：交替的停顿/震动毫秒数
	EventType string  `json:"event_type"` // BadPosture 或 Sedentary
}
