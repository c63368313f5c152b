// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"osteo-upgrade-go/internal/model"

	"gorm.io/gorm"
)

// TreeCount 是按树名统计诊断次数的聚合结果。
type TreeCount struct {
	TreeName string `json:"tree_name"`
	Count    int64  `json:"count"`
}

// DiagnosticRepository 接口定义了诊断会话记录的数据操作方法。
// 记录创建后不可变，因此没有 Update。
type DiagnosticRepository interface {
	Create(session *model.DiagnosticSession) error
	FindByID(id uint) (*model.DiagnosticSession, error)
	FindByUser(userID uint, limit int) ([]model.DiagnosticSession, error)
	Count() (int64, error)
	CountByTree(limit int) ([]TreeCount, error)
}

type diagnosticRepository struct {
	db *gorm.DB
}

// NewDiagnosticRepository 创建一个新的 DiagnosticRepository 实例。
func NewDiagnosticRepository(db *gorm.DB) DiagnosticRepository {
	return &diagnosticRepository{db: db}
}

// Create 持久化一条诊断会话记录。单行原子写入，不涉及事务。
func (r *diagnosticRepository) Create(session *model.DiagnosticSession) error {
	if err := session.Encode(); err != nil {
		return err
	}
	return r.db.Create(session).Error
}

// FindByID 根据 id 查找一条诊断记录，并解码其 JSON 列。
func (r *diagnosticRepository) FindByID(id uint) (*model.DiagnosticSession, error) {
	var session model.DiagnosticSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	if err := session.Decode(); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByUser 检索某个用户的诊断记录，按创建时间倒序，最多 limit 条。
func (r *diagnosticRepository) FindByUser(userID uint, limit int) ([]model.DiagnosticSession, error) {
	var sessions []model.DiagnosticSession
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if err := sessions[i].Decode(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Count 统计诊断记录总数。
func (r *diagnosticRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.DiagnosticSession{}).Count(&count).Error
	return count, err
}

// CountByTree 按树名分组统计诊断次数，取前 limit 名。
func (r *diagnosticRepository) CountByTree(limit int) ([]TreeCount, error) {
	var counts []TreeCount
	err := r.db.Model(&model.DiagnosticSession{}).
		Select("tree_name, COUNT(*) as count").
		Group("tree_name").
		Order("count DESC").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}
