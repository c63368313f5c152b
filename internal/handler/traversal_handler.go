// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/internal/traversal"
	"osteo-upgrade-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TraversalHandler 负责处理服务端问诊会话相关的 API 请求。
type TraversalHandler struct {
	traversalService service.TraversalService
}

// NewTraversalHandler 创建一个新的 TraversalHandler 实例。
func NewTraversalHandler(traversalService service.TraversalService) *TraversalHandler {
	return &TraversalHandler{traversalService: traversalService}
}

// Start 在指定的树上开启一次问诊会话。
func (h *TraversalHandler) Start(c *gin.Context) {
	treeID, err := parseID(c)
	if err != nil {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.traversalService.Start(c.Request.Context(), user, treeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTreeLocked):
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "Cet arbre est réservé aux comptes premium"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Arbre introuvable"})
		case errors.Is(err, traversal.ErrEmptyTree):
			c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "Cet arbre ne contient aucun nœud"})
		default:
			log.Error("StartTraversal: Failed to start session", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}

	log.Infof("Traversal session started: tree=%d, user=%d", treeID, user.ID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": view, "message": "Session démarrée"})
}

// Get 返回会话的当前节点。
func (h *TraversalHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.traversalService.Get(c.Request.Context(), user.ID, c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": view, "message": "success"})
}

// AnswerRequest 定义了作答 API 的请求体结构。
// next 对应所选答案的目标节点；答案没有目标时可以省略。
type AnswerRequest struct {
	Next *int `json:"next"`
}

// Answer 在会话的当前节点上作答并前进。
func (h *TraversalHandler) Answer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Corps de requête invalide"})
		return
	}

	view, err := h.traversalService.Answer(c.Request.Context(), user.ID, c.Param("token"), req.Next)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": view, "message": "success"})
}

// Back 回退会话一步。
func (h *TraversalHandler) Back(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.traversalService.Back(c.Request.Context(), user.ID, c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": view, "message": "success"})
}

// respondError 将会话操作的错误映射为 HTTP 响应。
func (h *TraversalHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Session introuvable ou expirée"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Arbre introuvable"})
	case errors.Is(err, traversal.ErrNotAnswerable):
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "Ce nœud n'accepte pas de réponse"})
	case errors.Is(err, traversal.ErrNodeNotFound):
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "L'arbre contient une référence invalide"})
	default:
		log.Error("Traversal: Session operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
	}
}
