package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/config"
	"github.com/zakki2007-hub/PostureAnalyze/internal/logger"
	"github.com/zakki2007-hub/PostureAnalyze/internal/mqtt"

	"go.uber.org/zap"
)

// postureFrame 模拟设备上报的完整数据帧
type postureFrame struct {
	PostureText  string    `json:"posture_text"`
	IsBad        bool      `json:"is_bad"`
	SitTime      int       `json:"sit_time"`
	PressureData []float64 `json:"pressure_data"`
}

// feeder 模拟一台姿势检测椅：周期性发布姿势帧，并接收震动指令打印出来
type feeder struct {
	client   *mqtt.Client
	topic    string
	qos      byte
	interval time.Duration
	rng      *rand.Rand
	logger   *zap.Logger

	seated  bool
	posture string
	sitTime int
}

const (
	postureGood        = "Good (angle)"
	postureHunchback   = "Hunchback (angle)"
	postureNeckForward = "Neck Forward"
	postureNoPerson    = "No Person"
	postureStandUp     = "Time to Stand up!"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "posture-feeder")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接 MQTT（独立 ClientID，避免与分析服务互踢）
	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = cfg.Feeder.ClientID
	client, err := mqtt.NewClient(&mqttCfg, log)
	if err != nil {
		log.Fatal("Failed to connect MQTT", zap.Error(err))
	}
	defer client.Disconnect()

	// 4. 订阅震动指令，模拟设备端反馈
	vibrateTopic := fmt.Sprintf("posture/%s/vibrate", cfg.Feed.DeviceID)
	err = client.Subscribe(vibrateTopic, cfg.MQTT.QoS, func(topic string, payload []byte) error {
		log.Info("Vibration command received", zap.ByteString("command", payload))
		return nil
	})
	if err != nil {
		log.Fatal("Failed to subscribe vibrate topic", zap.Error(err))
	}

	// 5. 启动数据发生器
	f := &feeder{
		client:   client,
		topic:    fmt.Sprintf("posture/%s/update", cfg.Feed.DeviceID),
		qos:      cfg.MQTT.QoS,
		interval: time.Duration(cfg.Feeder.Interval) * time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   log,
		seated:   true,
		posture:  postureGood,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.run(ctx)

	log.Info("Posture feeder started",
		zap.String("topic", f.topic),
		zap.Duration("interval", f.interval),
	)

	// 6. 等待信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	cancel()

	log.Info("Posture feeder stopped")
}

// run 周期性推进状态机并发布数据帧
func (f *feeder) run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.step()
			if err := f.publish(); err != nil {
				f.logger.Warn("Failed to publish posture frame", zap.Error(err))
			}
		}
	}
}

// step 推进坐姿状态机：偶尔起身离开，坐着时姿势随机好坏切换
func (f *feeder) step() {
	if !f.seated {
		f.sitTime = 0
		if f.rng.Float64() < 0.10 {
			f.seated = true
			f.posture = postureGood
		}
		return
	}

	f.sitTime += int(f.interval / time.Second)

	switch {
	case f.rng.Float64() < 0.02:
		f.seated = false
		f.sitTime = 0
	case f.rng.Float64() < 0.15:
		if f.posture == postureGood {
			if f.rng.Float64() < 0.5 {
				f.posture = postureHunchback
			} else {
				f.posture = postureNeckForward
			}
		} else {
			f.posture = postureGood
		}
	}
}

func (f *feeder) publish() error {
	frame := f.frame()
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	f.logger.Debug("Publishing posture frame",
		zap.String("posture", frame.PostureText),
		zap.Int("sit_time", frame.SitTime),
	)

	return f.client.Publish(f.topic, f.qos, false, payload)
}

// frame 由当前状态生成一帧完整数据
func (f *feeder) frame() postureFrame {
	if !f.seated {
		return postureFrame{
			PostureText:  postureNoPerson,
			IsBad:        false,
			SitTime:      0,
			PressureData: []float64{0, 0, 0, 0},
		}
	}

	text := f.posture
	if f.sitTime > 2700 {
		text = postureStandUp
	}

	pressure := make([]float64, 4)
	for i := range pressure {
		pressure[i] = 0.25 + (f.rng.Float64()-0.5)*0.1
	}

	return postureFrame{
		PostureText:  text,
		IsBad:        f.posture != postureGood,
		SitTime:      f.sitTime,
		PressureData: pressure,
	}
}
