// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 已识别的全局参数键。值始终以字符串编码。
const (
	SettingFreemiumTreeID = "freemium_tree_id"
	SettingPremiumPrice   = "premium_price"
	SettingDailyTip       = "daily_tip"
)

// Setting 对应于数据库中的 'settings' 表。
// 进程级字符串键值对，写入采用 last-write-wins，不做乐观并发控制。
type Setting struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Setting) TableName() string {
	return "settings"
}
