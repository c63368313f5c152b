// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"osteo-upgrade-go/internal/model"

	"gorm.io/gorm"
)

// TestRepository 接口定义了骨科参考测试的数据操作方法。
type TestRepository interface {
	Create(test *model.OrthoTest) error
	FindByID(id uint) (*model.OrthoTest, error)
	FindAll(region string) ([]model.OrthoTest, error)
	Update(test *model.OrthoTest) error
	Delete(id uint) error
	Count() (int64, error)
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository 创建一个新的 TestRepository 实例。
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

// Create 在数据库中插入一条新的参考测试记录。
func (r *testRepository) Create(test *model.OrthoTest) error {
	return r.db.Create(test).Error
}

// FindByID 根据 id 查找一条参考测试记录。
func (r *testRepository) FindByID(id uint) (*model.OrthoTest, error) {
	var test model.OrthoTest
	err := r.db.First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// FindAll 检索参考测试记录，region 非空时按区域过滤，
// 结果按区域和名称排序。
func (r *testRepository) FindAll(region string) ([]model.OrthoTest, error) {
	var tests []model.OrthoTest
	db := r.db.Order("region, name")
	if region != "" {
		db = db.Where("region = ?", region)
	}
	err := db.Find(&tests).Error
	return tests, err
}

// Update 更新一条已存在的参考测试记录。
func (r *testRepository) Update(test *model.OrthoTest) error {
	return r.db.Save(test).Error
}

// Delete 根据 id 删除一条参考测试记录。
func (r *testRepository) Delete(id uint) error {
	return r.db.Delete(&model.OrthoTest{}, id).Error
}

// Count 统计参考测试总数。
func (r *testRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.OrthoTest{}).Count(&count).Error
	return count, err
}
