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

// TestHandler 负责处理骨科参考测试相关的 API 请求。
type TestHandler struct {
	testService service.TestService
}

// NewTestHandler 创建一个新的 TestHandler 实例。
func NewTestHandler(testService service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// List 返回参考测试列表，可通过 ?region= 过滤。
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.testService.List(c.Query("region"))
	if err != nil {
		log.Error("ListTests: Failed to list tests", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": tests, "message": "success"})
}

// Get 返回一条参考测试。
func (h *TestHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	test, err := h.testService.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Test introuvable"})
			return
		}
		log.Error("GetTest: Failed to get test", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": test, "message": "success"})
}

// Search 通过 ?q= 全文检索参考测试，可叠加 ?region= 过滤。
func (h *TestHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Le paramètre 'q' est requis"})
		return
	}

	tests, err := h.testService.Search(c.Request.Context(), query, c.Query("region"))
	if err != nil {
		log.Error("SearchTests: Search failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "La recherche est indisponible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": tests, "message": "success"})
}

// Create 创建一条参考测试（管理员）。
func (h *TestHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.TestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Région, nom et description requis"})
		return
	}

	test, err := h.testService.Create(input, user.ID)
	if err != nil {
		log.Error("CreateTest: Failed to create test", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}

	log.Infof("Ortho test '%s' created by user %d", test.Name, user.ID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": test, "message": "Test créé"})
}

// Update 覆盖一条参考测试（管理员）。
func (h *TestHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var input service.TestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Région, nom et description requis"})
		return
	}

	if err := h.testService.Update(id, input); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Test introuvable"})
			return
		}
		log.Error("UpdateTest: Failed to update test", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Test mis à jour"})
}

// Delete 删除一条参考测试（管理员）。
func (h *TestHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	if err := h.testService.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Test introuvable"})
			return
		}
		log.Error("DeleteTest: Failed to delete test", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Test supprimé"})
}
