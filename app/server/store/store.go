package store

import (
	"admin-backend/app/server/models"
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// AdminStore 是管理员记录的持久化接口，缓存层也实现了它
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	Insert(ctx context.Context, req CreateAdmin) (*models.Admin, error)
	UpdateFields(ctx context.Context, id uint, update Update) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q ListQuery) ([]models.Admin, int64, error)
	Count(ctx context.Context) (int64, error)
}

// CreateAdmin 中的密码必须已经 hash 过
type CreateAdmin struct {
	Name         string
	Email        string
	PasswordHash string
}

type ListQuery struct {
	Limit  int
	Offset int
	Name   string // 按名称模糊过滤，留空不过滤
}

// Update 是对单条记录的一次字段修改
type Update interface {
	fields() map[string]any
}

type UpdateName struct {
	Name string
}

type UpdateEmail struct {
	Email string
}

type UpdateAvatar struct {
	Avatar []byte
}

type UpdatePassword struct {
	PasswordHash string
}

type UpdateStatus struct {
	Disabled bool
}

func (u UpdateName) fields() map[string]any {
	return map[string]any{"name": u.Name}
}

func (u UpdateEmail) fields() map[string]any {
	return map[string]any{"email": u.Email}
}

func (u UpdateAvatar) fields() map[string]any {
	return map[string]any{"avatar": u.Avatar}
}

func (u UpdatePassword) fields() map[string]any {
	return map[string]any{"password": u.PasswordHash}
}

func (u UpdateStatus) fields() map[string]any {
	return map[string]any{"disabled": u.Disabled}
}
