// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TreeHandler 负责处理决策树相关的 API 请求。
type TreeHandler struct {
	treeService service.TreeService
}

// NewTreeHandler 创建一个新的 TreeHandler 实例。
func NewTreeHandler(treeService service.TreeService) *TreeHandler {
	return &TreeHandler{treeService: treeService}
}

// List 返回树列表（不含节点），按请求用户标注 locked。
func (h *TreeHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	trees, err := h.treeService.List(user)
	if err != nil {
		log.Error("ListTrees: Failed to list trees", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": trees, "message": "success"})
}

// Get 返回一棵树的完整内容（含节点），受访问分级约束。
func (h *TreeHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tree, err := h.treeService.Get(user, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Arbre introuvable"})
		case errors.Is(err, service.ErrTreeLocked):
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "Cet arbre est réservé aux comptes premium"})
		default:
			log.Error("GetTree: Failed to get tree", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": tree, "message": "success"})
}

// TreeRequest 定义了创建/修改树 API 的请求体结构。
type TreeRequest struct {
	Name  string       `json:"name" binding:"required"`
	Icon  string       `json:"icon"`
	Nodes []model.Node `json:"nodes" binding:"required"`
}

// Create 创建一棵新树（管理员）。
func (h *TreeHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req TreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Nom et nœuds requis"})
		return
	}

	tree, err := h.treeService.Create(req.Name, req.Icon, req.Nodes, user.ID)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": verr.Error()})
			return
		}
		log.Error("CreateTree: Failed to create tree", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}

	log.Infof("Tree '%s' created by user %d", tree.Name, user.ID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": tree, "message": "Arbre créé"})
}

// Update 覆盖一棵已存在的树（管理员）。
func (h *TreeHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req TreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Nom et nœuds requis"})
		return
	}

	if err := h.treeService.Update(id, req.Name, req.Icon, req.Nodes); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": verr.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Arbre introuvable"})
		default:
			log.Error("UpdateTree: Failed to update tree", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Arbre mis à jour"})
}

// Delete 删除一棵树（管理员）。
func (h *TreeHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	if err := h.treeService.Delete(id); err != nil {
		log.Error("DeleteTree: Failed to delete tree", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Arbre supprimé"})
}
