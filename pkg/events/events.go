// Package events defines the payload types that are sent to Kafka.
package events

import "time"

// DiagnosticCompleted 是一次诊断走查完成并持久化后发布的事件。
// 统计管道消费该事件维护 Redis 中的计数器；事件丢失只影响统计，
// 不影响诊断记录本身。
type DiagnosticCompleted struct {
	DiagnosticID uint      `json:"diagnostic_id"`
	UserID       uint      `json:"user_id"`
	TreeID       uint      `json:"tree_id"`
	TreeName     string    `json:"tree_name"`
	Severity     string    `json:"severity"`
	CompletedAt  time.Time `json:"completed_at"`
}
