package service

import "osteo-upgrade-go/internal/model"

// CanAccessTree 是树可见性的纯判定函数：admin 和 premium 可以打开
// 任何树；freemium 只能打开当前全局参数指定的那棵树。无法识别的
// 角色一律按无特权（freemium 同级）处理。
// 该判定只影响树的打开权限，不参与走查逻辑本身。
func CanAccessTree(status string, treeID, freemiumTreeID uint) bool {
	switch status {
	case model.StatusAdmin, model.StatusPremium:
		return true
	default:
		return treeID == freemiumTreeID
	}
}
