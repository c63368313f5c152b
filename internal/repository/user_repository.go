// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"time"

	"osteo-upgrade-go/internal/model"

	"gorm.io/gorm"
)

// StatusCount 是按角色统计用户数量的聚合结果。
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DateCount 是按日期统计数量的聚合结果。
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Delete(userID uint) error
	CountActive() (int64, error)
	CountActiveByStatus() ([]StatusCount, error)
	CountNewByDay(days int) ([]DateCount, error)
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 在数据库中创建一个新的用户记录。
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByEmail 根据邮箱从数据库中查找一个用户。
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 根据用户 ID 从数据库中查找一个用户。
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 检索所有用户记录，按创建时间倒序。
func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// Update 更新数据库中一个已存在的用户记录。
func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// Delete 根据用户 ID 删除用户记录。
func (r *userRepository) Delete(userID uint) error {
	return r.db.Delete(&model.User{}, userID).Error
}

// CountActive 统计处于激活状态的用户总数。
func (r *userRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// CountActiveByStatus 按角色分组统计激活用户数量。
func (r *userRepository) CountActiveByStatus() ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.Model(&model.User{}).
		Select("status, COUNT(*) as count").
		Where("is_active = ?", true).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

// CountNewByDay 统计最近 days 天内每天的新注册用户数量。
func (r *userRepository) CountNewByDay(days int) ([]DateCount, error) {
	var counts []DateCount
	since := time.Now().AddDate(0, 0, -days)
	err := r.db.Model(&model.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date").
		Scan(&counts).Error
	return counts, err
}
