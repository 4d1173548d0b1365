package processor

import (
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
)

// DefaultPostureText 未收到姿势标签时的占位值
const DefaultPostureText = "Unknown"

// State 姿势处理器状态。由 pipeline 的单一消费者 goroutine 独占，
// 零值即会话初始状态（两个时间戳为零值时首条更新即可记日志、可触发震动）。
// 连接断开重连不重置本状态。
type State struct {
	PostureText   string
	IsBad         bool
	SitTime       int       // 连续就座秒数
	PressureData  []float64 // 座垫压力数据，缺省时保留上次值
	LastLogTime   time.Time // 最近一次成功写入历史日志的时间
	LastAlertTime time.Time // 最近一次成功触发震动的时间
}

// Merge 将一条 server_update 合并进状态。
// 缺省字段回落到默认值（posture_text -> "Unknown"、is_bad -> false、
// sit_time -> 0），唯独 pressure_data 缺省时保留旧值。
// 两个时间戳不在此处推进。
func Merge(s State, u models.PostureUpdate) State {
	next := s

	if u.PostureText != nil {
		next.PostureText = *u.PostureText
	} else {
		next.PostureText = DefaultPostureText
	}

	if u.IsBad != nil {
		next.IsBad = *u.IsBad
	} else {
		next.IsBad = false
	}

	if u.SitTime != nil {
		next.SitTime = *u.SitTime
		if next.SitTime < 0 {
			next.SitTime = 0
		}
	} else {
		next.SitTime = 0
	}

	if u.PressureData != nil {
		next.PressureData = u.PressureData
	}

	return next
}
