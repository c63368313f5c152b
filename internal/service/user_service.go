// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/pkg/database"
	"osteo-upgrade-go/pkg/hash"
	"osteo-upgrade-go/pkg/token"

	"gorm.io/gorm"
)

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(email, password, name string) (*model.User, error)
	Login(email, password string) (accessToken, refreshToken string, err error)
	Logout(tokenString string) error
	GetProfile(userID uint) (*model.User, error)
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	ChangePassword(userID, requesterID uint, currentPassword, newPassword string) error

	// 管理员操作
	ListUsers() ([]model.User, error)
	CreateUser(email, password, name, status string) (*model.User, error)
	UpdateUser(userID uint, email, name, status, password string) error
	DeleteUser(userID, requesterID uint) error
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理自助注册：新账号一律为 freemium 角色。
func (s *userService) Register(email, password, name string) (*model.User, error) {
	// 1. 检查邮箱是否已被占用
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Email:    email,
		Password: hashedPassword,
		Name:     name,
		Status:   model.StatusFreemium,
		IsActive: true,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login 处理用户登录：校验凭证、更新最后登录时间、签发令牌。
// 凭证错误和账号停用对外是同一个笼统错误。
func (s *userService) Login(email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if !user.IsActive {
		return "", "", ErrInvalidCredentials
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", "", err
	}

	accessToken, err = s.jwtManager.GenerateToken(user.ID, user.Email, user.Status)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Status)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Logout 将 token 加入 Redis 黑名单，剩余有效期作为过期时间。
func (s *userService) Logout(tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	return database.RDB.Set(context.Background(), "blacklist:"+tokenString, "true", expiration).Err()
}

// GetProfile 根据用户 ID 获取用户详细信息。
func (s *userService) GetProfile(userID uint) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

// RefreshToken 验证 refresh token 并签发新的一对令牌。
func (s *userService) RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	newAccessToken, err = s.jwtManager.GenerateToken(user.ID, user.Email, user.Status)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Status)
	if err != nil {
		return "", "", err
	}
	return newAccessToken, newRefreshToken, nil
}

// ChangePassword 修改密码：只能改自己的，且必须先验证当前密码。
func (s *userService) ChangePassword(userID, requesterID uint, currentPassword, newPassword string) error {
	if userID != requesterID {
		return ErrForbidden
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if !hash.CheckPasswordHash(currentPassword, user.Password) {
		return ErrInvalidCredentials
	}
	hashedPassword, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return s.userRepo.Update(user)
}

// ListUsers 返回所有用户，按创建时间倒序。
func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

// CreateUser 由管理员创建账号，角色由管理员指定。
// 无法识别的角色一律落到 freemium。
func (s *userService) CreateUser(email, password, name, status string) (*model.User, error) {
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	switch status {
	case model.StatusAdmin, model.StatusPremium, model.StatusFreemium:
	default:
		status = model.StatusFreemium
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	newUser := &model.User{
		Email:    email,
		Password: hashedPassword,
		Name:     name,
		Status:   status,
		IsActive: true,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// UpdateUser 由管理员修改账号信息，password 为空时保持原密码。
func (s *userService) UpdateUser(userID uint, email, name, status, password string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}

	// 换邮箱时检查新邮箱是否已被其他账号占用
	if email != user.Email {
		if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != userID {
			return ErrEmailTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	user.Email = email
	user.Name = name
	switch status {
	case model.StatusAdmin, model.StatusPremium, model.StatusFreemium:
		user.Status = status
	}
	if password != "" {
		hashedPassword, err := hash.HashPassword(password)
		if err != nil {
			return err
		}
		user.Password = hashedPassword
	}
	return s.userRepo.Update(user)
}

// DeleteUser 删除一个账号，管理员不能删除自己。
func (s *userService) DeleteUser(userID, requesterID uint) error {
	if userID == requesterID {
		return ErrSelfDelete
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return err
	}
	return s.userRepo.Delete(userID)
}
