package types

import "time"

type ErrorMessage struct {
	Message *string `json:"message,omitempty"`
}

// AdminInfo 是对外展示的管理员信息，不包含密码 hash
type AdminInfo struct {
	Id        *uint      `json:"id,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Avatar    *[]byte    `json:"avatar,omitempty"`
	Disabled  *bool      `json:"disabled,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type LoginRequest struct {
	Username *string `json:"username,omitempty" form:"username"`
	Password *string `json:"password,omitempty" form:"password"`
}

type LoginToken struct {
	AccessToken *string    `json:"access_token,omitempty"`
	TokenType   *string    `json:"token_type,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type AdminCreateRequest struct {
	Name     *string `json:"name,omitempty" form:"name"`
	Email    *string `json:"email,omitempty" form:"email"`
	Password *string `json:"password,omitempty" form:"password"`
}

type AdminNameUpdateRequest struct {
	Name *string `json:"name,omitempty"`
}

type AdminEmailUpdateRequest struct {
	Email *string `json:"email,omitempty"`
}

type AdminPasswordUpdateRequest struct {
	Password *string `json:"password,omitempty"`
}

type AdminStatusUpdateRequest struct {
	Disabled *bool `json:"disabled,omitempty"`
}

type AdminListParams struct {
	Limit  *int    `query:"limit"`
	Offset *int    `query:"offset"`
	Name   *string `query:"name"`
}
