// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"osteo-upgrade-go/internal/report"
	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/log"
	"osteo-upgrade-go/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DiagnosticHandler 负责处理诊断记录和报告导出相关的 API 请求。
type DiagnosticHandler struct {
	diagnosticService service.DiagnosticService
	archiveBucket     string
}

// NewDiagnosticHandler 创建一个新的 DiagnosticHandler 实例。
func NewDiagnosticHandler(diagnosticService service.DiagnosticService, archiveBucket string) *DiagnosticHandler {
	return &DiagnosticHandler{
		diagnosticService: diagnosticService,
		archiveBucket:     archiveBucket,
	}
}

// Create 持久化一次客户端完成的走查。路径在服务端按树重放校验。
func (h *DiagnosticHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.DiagnosticInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Arbre, nom et chemin requis"})
		return
	}

	id, err := h.diagnosticService.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": verr.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Arbre introuvable"})
		default:
			log.Error("CreateDiagnostic: Failed to create diagnostic", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}

	log.Infof("Diagnostic %d recorded for user %d", id, user.ID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": gin.H{"id": id}, "message": "Diagnostic enregistré"})
}

// List 返回当前用户的诊断历史，最新在前。
func (h *DiagnosticHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	diagnostics, err := h.diagnosticService.ListForUser(user.ID)
	if err != nil {
		log.Error("ListDiagnostics: Failed to list diagnostics", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": diagnostics, "message": "success"})
}

// DownloadPDF 生成并下载一条诊断记录的 PDF 报告，仅限记录归属用户。
// 生成的报告同时归档到对象存储；归档失败不影响下载。
func (h *DiagnosticHandler) DownloadPDF(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	diagnostic, err := h.diagnosticService.GetOwned(id, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Diagnostic introuvable"})
			return
		}
		log.Error("DownloadPDF: Failed to load diagnostic", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}

	pdf, err := report.Render(diagnostic, user)
	if err != nil {
		log.Error("DownloadPDF: Failed to render report", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur lors de la génération du rapport"})
		return
	}

	if storage.MinioClient != nil {
		if err := storage.ArchiveReport(c.Request.Context(), h.archiveBucket, diagnostic.ID, pdf); err != nil {
			log.Warnf("归档诊断报告失败: diagnosticId=%d, error: %v", diagnostic.ID, err)
		}
	}

	filename := report.Filename(diagnostic.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
