package service

import (
	"testing"

	"osteo-upgrade-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingServiceRoundTrip(t *testing.T) {
	svc := NewSettingService(newFakeSettingRepo())

	require.NoError(t, svc.Set(model.SettingPremiumPrice, "9.99"))
	setting, err := svc.Get(model.SettingPremiumPrice)
	require.NoError(t, err)
	assert.Equal(t, "9.99", setting.Value)

	// upsert 覆盖旧值
	require.NoError(t, svc.Set(model.SettingPremiumPrice, "14.99"))
	setting, err = svc.Get(model.SettingPremiumPrice)
	require.NoError(t, err)
	assert.Equal(t, "14.99", setting.Value)
}

func TestFreemiumTreeID(t *testing.T) {
	repo := newFakeSettingRepo()
	svc := NewSettingService(repo)

	// 参数缺失
	assert.Equal(t, uint(0), svc.FreemiumTreeID())

	// 值不可解析
	repo.settings[model.SettingFreemiumTreeID] = "abc"
	assert.Equal(t, uint(0), svc.FreemiumTreeID())

	// 修改后下一次读取即生效
	repo.settings[model.SettingFreemiumTreeID] = "3"
	assert.Equal(t, uint(3), svc.FreemiumTreeID())
	repo.settings[model.SettingFreemiumTreeID] = "5"
	assert.Equal(t, uint(5), svc.FreemiumTreeID())
}
