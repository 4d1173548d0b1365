package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 缓存中没有对应的键
var ErrCacheMiss = errors.New("cache miss")

// SnapshotRepository 实时姿势快照缓存。
// 单键 JSON 值加 TTL：pipeline 每处理一条更新就覆盖写入，
// 状态接口从这里读最新值，feed 停止后快照随 TTL 过期。
type SnapshotRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotRepository 创建快照缓存仓库
func NewSnapshotRepository(client *redis.Client, key string, ttlSeconds int) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		key:    key,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

// Set 覆盖写入最新快照
func (r *SnapshotRepository) Set(ctx context.Context, snapshot *models.PostureSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

// Get 读取最新快照，键不存在返回 ErrCacheMiss
func (r *SnapshotRepository) Get(ctx context.Context) (*models.PostureSnapshot, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot models.PostureSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
