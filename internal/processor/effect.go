package processor

import (
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
)

// EffectKind 副作用类型
type EffectKind string

const (
	EffectLogWrite     EffectKind = "log_write"     // 写一条历史日志
	EffectAlertTrigger EffectKind = "alert_trigger" // 触发一次设备震动
)

// Effect 一条决策产生的副作用描述。Reduce 只产生描述不执行 I/O；
// pipeline 按序执行，执行成功后才把 At 写回 State 对应的时间戳。
type Effect struct {
	Kind    EffectKind
	Entry   *models.LogEntry       // Kind == EffectLogWrite 时有效
	Command *models.VibrateCommand // Kind == EffectAlertTrigger 时有效
	At      time.Time              // 决策时刻
}
