// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const traversalKeyPrefix = "traversal:"

// TraversalRepository 接口定义了问诊会话状态的暂存操作。
// 状态以不透明令牌为键存放，到期自动清除。
type TraversalRepository interface {
	Save(ctx context.Context, token string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, token string) ([]byte, error)
}

type traversalRepository struct {
	rdb *redis.Client
}

// NewTraversalRepository 创建一个新的 TraversalRepository 实例。
func NewTraversalRepository(rdb *redis.Client) TraversalRepository {
	return &traversalRepository{rdb: rdb}
}

// Save 写入一个会话状态并重置其保留时长。
func (r *traversalRepository) Save(ctx context.Context, token string, data []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, traversalKeyPrefix+token, data, ttl).Err()
}

// Load 取回一个会话状态。令牌不存在或已过期时返回 redis.Nil。
func (r *traversalRepository) Load(ctx context.Context, token string) ([]byte, error) {
	return r.rdb.Get(ctx, traversalKeyPrefix+token).Bytes()
}
