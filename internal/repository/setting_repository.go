// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"osteo-upgrade-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 接口定义了全局参数的数据操作方法。
type SettingRepository interface {
	Get(key string) (*model.Setting, error)
	Upsert(setting *model.Setting) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建一个新的 SettingRepository 实例。
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get 根据键读取一个全局参数。
func (r *settingRepository) Get(key string) (*model.Setting, error) {
	var setting model.Setting
	// key 在 MySQL 中是保留字，走 map 条件让 GORM 按方言加引号
	err := r.db.Where(map[string]interface{}{"key": key}).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert 写入一个全局参数，键已存在时覆盖其值（last-write-wins）。
func (r *settingRepository) Upsert(setting *model.Setting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}
