package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 数据源指标
	UpdatesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posture_updates_received_total",
		Help: "Total number of posture updates received from the feed",
	})

	UpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posture_updates_dropped_total",
		Help: "Total number of unparseable posture updates dropped",
	})

	// 历史日志指标
	LogWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posture_log_writes_total",
		Help: "Total number of history log entries written",
	})

	LogWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posture_log_write_failures_total",
		Help: "Total number of failed history log writes",
	})

	// 震动触发指标
	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posture_alerts_triggered_total",
		Help: "Total number of vibration alerts triggered",
	}, []string{"event_type"})

	AlertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posture_alert_failures_total",
		Help: "Total number of failed vibration triggers",
	})

	// 处理延迟
	UpdateHandleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "posture_update_handle_duration_seconds",
		Help:    "Time spent handling a single posture update",
		Buckets: prometheus.DefBuckets,
	})

	// 连接状态：1 connected, 0 其他
	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "posture_feed_connected",
		Help: "Whether the posture feed connection is currently up",
	})
)
