// Package service 包含了应用的业务逻辑层。
package service

import (
	"strconv"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
)

// SettingService 接口定义了全局参数的业务操作。
// 值始终是字符串；并发写入采用 last-write-wins，这是产品接受的限制。
type SettingService interface {
	Get(key string) (*model.Setting, error)
	Set(key, value string) error
	FreemiumTreeID() uint
}

type settingService struct {
	settingRepo repository.SettingRepository
}

// NewSettingService 创建一个新的 SettingService 实例。
func NewSettingService(settingRepo repository.SettingRepository) SettingService {
	return &settingService{settingRepo: settingRepo}
}

// Get 读取一个全局参数。
func (s *settingService) Get(key string) (*model.Setting, error) {
	return s.settingRepo.Get(key)
}

// Set 写入一个全局参数（upsert）。
func (s *settingService) Set(key, value string) error {
	return s.settingRepo.Upsert(&model.Setting{Key: key, Value: value})
}

// FreemiumTreeID 返回当前为 freemium 角色解锁的树 id。
// 每次调用都读取存储，参数修改后下一次读取即生效。
// 参数缺失或无法解析时返回 0（没有任何树被解锁）。
func (s *settingService) FreemiumTreeID() uint {
	setting, err := s.settingRepo.Get(model.SettingFreemiumTreeID)
	if err != nil {
		return 0
	}
	id, err := strconv.ParseUint(setting.Value, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
