// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"osteo-upgrade-go/internal/model"

	"gorm.io/gorm"
)

// TreeRepository 接口定义了决策树的数据操作方法。
type TreeRepository interface {
	Create(tree *model.DecisionTree) error
	FindByID(id uint) (*model.DecisionTree, error)
	FindAll() ([]model.DecisionTree, error)
	Update(tree *model.DecisionTree) error
	Delete(id uint) error
	Count() (int64, error)
}

type treeRepository struct {
	db *gorm.DB
}

// NewTreeRepository 创建一个新的 TreeRepository 实例。
func NewTreeRepository(db *gorm.DB) TreeRepository {
	return &treeRepository{db: db}
}

// Create 在数据库中插入一棵新的决策树。
func (r *treeRepository) Create(tree *model.DecisionTree) error {
	return r.db.Create(tree).Error
}

// FindByID 根据 id 查找一棵决策树，并解码其节点列表。
func (r *treeRepository) FindByID(id uint) (*model.DecisionTree, error) {
	var tree model.DecisionTree
	if err := r.db.First(&tree, id).Error; err != nil {
		return nil, err
	}
	if err := tree.DecodeNodes(); err != nil {
		return nil, err
	}
	return &tree, nil
}

// FindAll 检索所有决策树，按名称排序。节点列表不解码，
// 列表页只需要 id/name/icon/时间戳。
func (r *treeRepository) FindAll() ([]model.DecisionTree, error) {
	var trees []model.DecisionTree
	err := r.db.Order("name").Find(&trees).Error
	return trees, err
}

// Update 更新数据库中一棵已存在的决策树。
func (r *treeRepository) Update(tree *model.DecisionTree) error {
	return r.db.Save(tree).Error
}

// Delete 根据 id 删除一棵决策树。
// 历史诊断记录保存了反范式化的树名，不受删除影响。
func (r *treeRepository) Delete(id uint) error {
	return r.db.Delete(&model.DecisionTree{}, id).Error
}

// Count 统计决策树总数。
func (r *treeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.DecisionTree{}).Count(&count).Error
	return count, err
}
