package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/alert"
	"github.com/zakki2007-hub/PostureAnalyze/internal/config"
	"github.com/zakki2007-hub/PostureAnalyze/internal/consumer"
	"github.com/zakki2007-hub/PostureAnalyze/internal/database"
	httpapi "github.com/zakki2007-hub/PostureAnalyze/internal/http"
	"github.com/zakki2007-hub/PostureAnalyze/internal/mqtt"
	"github.com/zakki2007-hub/PostureAnalyze/internal/processor"
	redispkg "github.com/zakki2007-hub/PostureAnalyze/internal/redis"
	"github.com/zakki2007-hub/PostureAnalyze/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PostureService 姿势分析服务（整合各层）
type PostureService struct {
	config      *config.Config
	db          *sql.DB // 归档未启用时为 nil
	redisClient *redis.Client
	mqttClient  *mqtt.Client
	logger      *zap.Logger

	status       *consumer.ConnectionStatus
	pipeline     *consumer.Pipeline
	mqttConsumer *consumer.MQTTConsumer // feed 为 mqtt 模式时非 nil
	wsConsumer   *consumer.WSConsumer   // feed 为 websocket 模式时非 nil
	httpServer   *http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPostureService 创建姿势分析服务
func NewPostureService(cfg *config.Config, logger *zap.Logger) (*PostureService, error) {
	// 1. 连接 Redis
	redisClient := redispkg.NewRedisClient(&cfg.Redis)
	if err := redispkg.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 2. 连接 PostgreSQL（报警归档，可选）
	var db *sql.DB
	if cfg.Alarm.ArchiveEnabled {
		var err error
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
	}

	// 3. 连接 MQTT（震动指令通道，mqtt 模式下同时是数据源）
	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MQTT: %w", err)
	}

	// 4. 创建 Repository 层
	historyRepo := repository.NewHistoryRepository(redisClient, cfg.History.Key, processor.HistoryCap, logger)
	snapshotRepo := repository.NewSnapshotRepository(redisClient, cfg.Snapshot.Key, cfg.Snapshot.TTL)
	var alarmRepo *repository.AlarmEventsRepository
	if db != nil {
		alarmRepo = repository.NewAlarmEventsRepository(db, logger)
	}

	// 5. 创建报警触达与输出
	sink := alert.NewVibrationSink(mqttClient, cfg.Feed.DeviceID, cfg.MQTT.QoS, logger)
	publisher := alert.NewAlarmPublisher(redisClient, cfg.Alarm.StreamKey, logger)
	var notifier *alert.CloudNotifier
	if cfg.Alarm.CloudURL != "" {
		notifier = alert.NewCloudNotifier(cfg.Alarm.CloudURL, logger)
	}

	// 6. 创建处理管道（可选输出做 nil 保护）
	status := consumer.NewConnectionStatus()
	var archive consumer.AlarmArchive
	if alarmRepo != nil {
		archive = alarmRepo
	}
	var cloud consumer.CloudReporter
	if notifier != nil {
		cloud = notifier
	}
	pipeline := consumer.NewPipeline(
		cfg.Feed.QueueSize,
		historyRepo,
		snapshotRepo,
		sink,
		archive,
		publisher,
		cloud,
		cfg.Feed.DeviceID,
		status,
		logger,
	)

	// 7. 创建数据源消费者
	s := &PostureService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		logger:      logger,
		status:      status,
		pipeline:    pipeline,
	}
	switch cfg.Feed.Mode {
	case "websocket":
		s.wsConsumer = consumer.NewWSConsumer(cfg.Feed.WSURL, pipeline, status, logger)
	default:
		s.mqttConsumer = consumer.NewMQTTConsumer(
			mqttClient, cfg.Feed.DeviceID, cfg.MQTT.QoS, pipeline, status, logger,
		)
	}

	// 8. 创建 HTTP 服务
	var alarms httpapi.AlarmStore
	if alarmRepo != nil {
		alarms = alarmRepo
	}
	handler := httpapi.NewPostureHandler(historyRepo, snapshotRepo, alarms, status, logger)
	router := httpapi.NewRouter(logger)
	router.RegisterPostureRoutes(handler)
	router.RegisterSystemRoutes()
	s.httpServer = &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	return s, nil
}

// Start 启动服务
func (s *PostureService) Start(ctx context.Context) error {
	s.logger.Info("Starting posture service",
		zap.String("feed_mode", s.config.Feed.Mode),
		zap.String("device_id", s.config.Feed.DeviceID),
	)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pipeline.Run(runCtx)
	}()

	if s.wsConsumer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.wsConsumer.Run(runCtx)
		}()
	}
	if s.mqttConsumer != nil {
		if err := s.mqttConsumer.Start(); err != nil {
			cancel()
			return fmt.Errorf("failed to start MQTT consumer: %w", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.HTTP.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止服务。先停数据源再停管道：在途日志写入完成后退出，
// 停机之后不再下发震动。
func (s *PostureService) Stop() error {
	s.logger.Info("Stopping posture service")

	// 1. 停止数据源接入
	if s.mqttConsumer != nil {
		s.mqttConsumer.Stop()
	}

	// 2. 停止管道与 websocket 消费者
	if s.cancel != nil {
		s.cancel()
	}

	// 3. 关闭 HTTP 服务
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown timed out", zap.Error(err))
	}

	s.wg.Wait()

	// 4. 断开外部连接
	s.mqttClient.Disconnect()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database", zap.Error(err))
		}
	}
	if err := redispkg.Close(s.redisClient); err != nil {
		s.logger.Error("Failed to close redis", zap.Error(err))
	}

	return nil
}
