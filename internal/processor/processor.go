package processor

import (
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"
)

// 决策常量
const (
	LogInterval     = 5 * time.Second  // 非不良姿势的日志节流间隔
	VibrateCooldown = 10 * time.Second // 两次震动触发之间的最短间隔
	SedentaryLimit  = 2700             // 久坐阈值（秒），45 分钟
	HistoryCap      = 200              // 历史日志上限条数
)

// 震动事件类型
const (
	EventBadPosture = "BadPosture"
	EventSedentary  = "Sedentary"
)

// 震动波形：交替的停顿/震动毫秒数。久坐用双长震，不看屏幕也能区分。
var (
	PatternBadPosture = []int64{0, 500}
	PatternSedentary  = []int64{0, 800, 400, 800}
)

// Reduce 处理一条姿势更新：先合并状态，再依次做日志决策和震动决策，
// 返回合并后的状态和按序执行的副作用列表。
// 纯函数，不做 I/O，时间由调用方注入。LastLogTime/LastAlertTime 只由
// pipeline 在对应副作用执行成功后推进，被抑制或执行失败时保持不动。
func Reduce(s State, u models.PostureUpdate, now time.Time, sinkAvailable bool) (State, []Effect) {
	next := Merge(s, u)

	var effects []Effect

	// 1. 日志决策：不良姿势必记；否则距上次成功写入满节流间隔才记
	if next.IsBad || now.Sub(s.LastLogTime) >= LogInterval {
		effects = append(effects, Effect{
			Kind: EffectLogWrite,
			Entry: &models.LogEntry{
				Time:   now.Format("15:04:05"),
				Date:   now.Format("2006-01-02"),
				Status: next.PostureText,
				IsBad:  next.IsBad,
			},
			At: now,
		})
	}

	// 2. 震动决策：仅在设备可达时评估，冷却期内一律抑制。
	// 久坐优先于不良姿势，单条更新最多触发一种波形。
	if sinkAvailable && now.Sub(s.LastAlertTime) >= VibrateCooldown {
		switch {
		case next.SitTime > SedentaryLimit:
			effects = append(effects, Effect{
				Kind: EffectAlertTrigger,
				Command: &models.VibrateCommand{
					Pattern:   PatternSedentary,
					EventType: EventSedentary,
				},
				At: now,
			})
		case next.IsBad:
			effects = append(effects, Effect{
				Kind: EffectAlertTrigger,
				Command: &models.VibrateCommand{
					Pattern:   PatternBadPosture,
					EventType: EventBadPosture,
				},
				At: now,
			})
		}
	}

	return next, effects
}
