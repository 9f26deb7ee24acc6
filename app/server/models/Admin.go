package models

import "time"

type Admin struct {
	ID uint `gorm:"column:id;primaryKey"`

	// 基础信息
	Name   string `gorm:"column:name;size:200"`                      // 显示名称
	Email  string `gorm:"column:email;size:200;uniqueIndex;not null"` // 邮箱，用于登录，全局唯一
	Avatar []byte `gorm:"column:avatar"`                              // 头像，可以为空

	// 登录与授权认证相关
	Password string `gorm:"column:password;size:300;not null"`      // 密码 hash ，使用 bcrypt 或 argon2id 储存
	Disabled bool   `gorm:"column:disabled;not null;default:false"` // 被停用的账号无法通过认证

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"` // 创建后不再更改
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Admin) TableName() string {
	return "admins"
}
