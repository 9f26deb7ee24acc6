package config

import "time"

type Config struct {
	System struct {
		IsProd                bool          // 是否为生产环境
		Listen                string        // 监听地址
		DBDriver              string        // 数据库驱动： postgres 或 sqlite
		DBConnectionString    string        // 数据库的连接字符串
		RedisConnectionString string        // Redis 数据库的连接字符串，留空则不启用缓存
		CacheTTL              time.Duration // 管理员信息缓存的有效期
	}
	Security struct {
		SignatureSecretKey  string        // 签名密钥，用于产生 JWT ，更新会导致旧有会话失效
		SignatureAlgorithm  string        // 签名算法： HS256 / HS384 / HS512
		AccessTokenDuration time.Duration // 访问令牌的有效期
		PasswordHash        string        // 新密码使用的 hash 方案： bcrypt 或 argon2id
		BcryptCost          int           // bcrypt 的计算成本
		ProtectManagement   bool          // 管理接口是否需要登录后才能访问
	}
	Limits struct {
		AvatarMaxBytes int64 // 头像的最大字节数
	}
}
