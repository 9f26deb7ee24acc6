package constants

import "time"

const (
	AuthTokenType       = "bearer"
	AuthTokenDuration   = 30 * time.Minute // 默认的令牌有效期
	AuthTokenAlgorithm  = "HS256"
	AuthChallengeHeader = "Bearer"
)

// 密码策略
const (
	PasswordMinLength = 8
	PasswordMaxBytes  = 72 // bcrypt 只使用前 72 字节
)
