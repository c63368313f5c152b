// Package pipeline 消费诊断完成事件并维护统计计数器。
package pipeline

import (
	"context"
	"time"

	"osteo-upgrade-go/pkg/database"
	"osteo-upgrade-go/pkg/events"
	"osteo-upgrade-go/pkg/log"
)

const (
	dailyKeyPrefix = "stats:diagnostics:daily:"

	// 计数器保留 40 天，比仪表盘的 30 天窗口多留余量。
	counterTTL = 40 * 24 * time.Hour
)

// Aggregator 将诊断完成事件累加到 Redis 日计数器上。
type Aggregator struct{}

// NewAggregator 创建一个新的 Aggregator 实例。
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Process 按事件的完成日期递增对应的日计数器。
func (a *Aggregator) Process(ctx context.Context, event events.DiagnosticCompleted) error {
	key := dailyKeyPrefix + event.CompletedAt.Format("2006-01-02")

	count, err := database.RDB.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		if err := database.RDB.Expire(ctx, key, counterTTL).Err(); err != nil {
			log.Warnf("设置统计计数器过期时间失败: key=%s, error: %v", key, err)
		}
	}

	log.Infof("诊断事件已计入统计: diagnosticId=%d, date=%s, count=%d",
		event.DiagnosticID, event.CompletedAt.Format("2006-01-02"), count)
	return nil
}
