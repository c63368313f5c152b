// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler 负责处理用户管理相关的 API 请求（管理员）以及密码修改。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List 返回所有用户账号。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		log.Error("ListUsers: Failed to list users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": users, "message": "success"})
}

// CreateUserRequest 定义了管理员创建账号 API 的请求体结构。
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Status   string `json:"status"`
}

// Create 由管理员创建一个账号。
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Email, mot de passe et nom requis"})
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.Name, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "Cet email est déjà utilisé"})
			return
		}
		log.Error("CreateUser: Failed to create user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		return
	}

	log.Infof("User '%s' created by admin", user.Email)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": user, "message": "Utilisateur créé"})
}

// UpdateUserRequest 定义了管理员修改账号 API 的请求体结构。
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

// Update 由管理员修改一个账号。
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Email et nom requis"})
		return
	}

	if err := h.userService.UpdateUser(id, req.Email, req.Name, req.Status, req.Password); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Utilisateur introuvable"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "Cet email est déjà utilisé"})
		default:
			log.Error("UpdateUser: Failed to update user", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Utilisateur mis à jour"})
}

// Delete 由管理员删除一个账号。管理员不能删除自己。
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id, admin.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDelete):
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Impossible de supprimer son propre compte"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Utilisateur introuvable"})
		default:
			log.Error("DeleteUser: Failed to delete user", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}

	log.Infof("User %d deleted by admin %d", id, admin.ID)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Utilisateur supprimé"})
}

// ChangePasswordRequest 定义了修改密码 API 的请求体结构。
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改账号密码，仅限本人。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Mot de passe actuel et nouveau mot de passe (6 caractères minimum) requis"})
		return
	}

	if err := h.userService.ChangePassword(id, user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "Vous ne pouvez modifier que votre propre mot de passe"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "Mot de passe actuel incorrect"})
		default:
			log.Error("ChangePassword: Failed to change password", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erreur serveur"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Mot de passe modifié"})
}

// parseID 解析路径参数 :id，非法时直接写出 400。
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Identifiant invalide"})
		return 0, err
	}
	return uint(id), nil
}
