package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HistoryRepository 姿势历史日志仓库。
// 存储为 Redis 列表：新条目 LPUSH 到表头（最新在前），每次插入后
// LTRIM 截断到容量上限，超龄条目从表尾淘汰。读取按存储序返回，不重排。
type HistoryRepository struct {
	client   *redis.Client
	key      string
	capacity int64
	logger   *zap.Logger
}

// NewHistoryRepository 创建历史日志仓库
func NewHistoryRepository(client *redis.Client, key string, capacity int, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		client:   client,
		key:      key,
		capacity: int64(capacity),
		logger:   logger,
	}
}

// Append 头插一条日志并截断到容量上限。
// LPUSH 和 LTRIM 放在同一事务管道里，容量约束在每次插入时都成立。
func (r *HistoryRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, 0, r.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}

	return nil
}

// List 读取全部日志，最新在前。
// 反序列化失败的条目跳过并记警告，单条脏数据不影响整页历史。
func (r *HistoryRepository) List(ctx context.Context) ([]models.LogEntry, error) {
	vals, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]models.LogEntry, 0, len(vals))
	for _, v := range vals {
		var e models.LogEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			r.logger.Warn("Skipping malformed history entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Clear 一次性清空全部历史，不可恢复
func (r *HistoryRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Size 当前日志条数
func (r *HistoryRepository) Size(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get history size: %w", err)
	}
	return n, nil
}
