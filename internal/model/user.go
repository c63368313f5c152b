// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户角色（status 列）的封闭取值集合。
// 任何无法识别的值一律按无特权处理。
const (
	StatusAdmin    = "admin"
	StatusPremium  = "premium"
	StatusFreemium = "freemium"
)

// User 对应于数据库中的 'users' 表。
type User struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Status    string     `gorm:"type:varchar(20);not null;default:'freemium'" json:"status"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin *time.Time `gorm:"default:null" json:"last_login"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}

// IsAdmin 报告用户是否为管理员。
func (u *User) IsAdmin() bool {
	return u.Status == StatusAdmin
}
