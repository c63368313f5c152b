// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SettingHandler 负责处理全局参数相关的 API 请求。
type SettingHandler struct {
	settingService service.SettingService
}

// NewSettingHandler 创建一个新的 SettingHandler 实例。
func NewSettingHandler(settingService service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get 读取一个全局参数。参数不存在时 data 为 null，不报错。
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingService.Get(c.Param("key"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": nil, "message": "success"})
			return
		}
		log.Error("GetSetting: Failed to get setting", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"value": setting.Value}, "message": "success"})
}

// SetSettingRequest 定义了写入全局参数 API 的请求体结构。
type SetSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// Set 写入一个全局参数（管理员）。并发写入为 last-write-wins。
func (h *SettingHandler) Set(c *gin.Context) {
	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Le champ 'value' est requis"})
		return
	}

	key := c.Param("key")
	if err := h.settingService.Set(key, req.Value); err != nil {
		log.Error("SetSetting: Failed to set setting", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}

	log.Infof("Setting '%s' updated", key)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Paramètre mis à jour"})
}
