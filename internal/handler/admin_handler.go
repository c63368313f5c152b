// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理管理后台仪表盘相关的 API 请求。
type AdminHandler struct {
	statsService service.StatsService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(statsService service.StatsService) *AdminHandler {
	return &AdminHandler{statsService: statsService}
}

// Stats 返回管理后台仪表盘的统计数据。
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		log.Error("Stats: Failed to build dashboard", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": stats, "message": "success"})
}
