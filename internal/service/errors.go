// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务层哨兵错误。handler 层据此映射 HTTP 状态码：
// 认证/授权类错误对外只返回笼统信息，避免泄露细节。
var (
	// ErrInvalidCredentials 表示邮箱或密码不正确（或账号未激活）。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken 表示邮箱已被占用（唯一约束冲突）。
	ErrEmailTaken = errors.New("email already in use")
	// ErrForbidden 表示访问了不属于自己的记录或权限不足。
	ErrForbidden = errors.New("forbidden")
	// ErrSelfDelete 表示管理员试图删除自己的账号。
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrTreeLocked 表示 freemium 账号访问了未解锁的树。
	ErrTreeLocked = errors.New("tree locked for this account")
)
