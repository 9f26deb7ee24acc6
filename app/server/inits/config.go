package inits

import (
	"admin-backend/app/server/config"
	"admin-backend/app/server/constants"
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

// 配置键与环境变量的映射
var envBindings = map[string]string{
	"mode":                          "MODE",
	"system.listen":                 "LISTEN",
	"system.db_driver":              "DB_DRIVER",
	"system.db_conn":                "DB_CONN",
	"system.redis_conn":             "REDIS_CONN",
	"system.cache_ttl":              "CACHE_TTL",
	"security.signature_secret_key": "SIGNATURE_SECRET_KEY",
	"security.signature_algorithm":  "SIGNATURE_ALGORITHM",
	"security.access_token_minutes": "ACCESS_TOKEN_MINUTES",
	"security.password_hash":        "PASSWORD_HASH",
	"security.bcrypt_cost":          "BCRYPT_COST",
	"security.protect_management":   "PROTECT_MANAGEMENT",
	"limits.avatar_max_bytes":       "AVATAR_MAX_BYTES",
}

// NewViper 准备带有默认值和环境变量绑定的 viper 实例， configFile 为空时只读取环境变量
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("mode", "dev")
	v.SetDefault("system.listen", ":1323") // 默认监听地址
	v.SetDefault("system.db_driver", "postgres")
	v.SetDefault("system.cache_ttl", constants.CacheExpireAdminInfo)
	v.SetDefault("security.signature_algorithm", constants.AuthTokenAlgorithm)
	v.SetDefault("security.access_token_minutes", int(constants.AuthTokenDuration/time.Minute))
	v.SetDefault("security.password_hash", "bcrypt")
	v.SetDefault("security.bcrypt_cost", 0)
	v.SetDefault("security.protect_management", true)
	v.SetDefault("limits.avatar_max_bytes", constants.AvatarDefaultMaxBytes)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

func Config(v *viper.Viper) (*config.Config, error) {
	cfg := &config.Config{}

	cfg.System.IsProd = strings.HasPrefix(strings.ToLower(v.GetString("mode")), "p")
	cfg.System.Listen = v.GetString("system.listen")

	cfg.System.DBDriver = strings.ToLower(v.GetString("system.db_driver"))
	switch cfg.System.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.System.DBDriver)
	}

	if cfg.System.DBConnectionString = v.GetString("system.db_conn"); cfg.System.DBConnectionString == "" {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	}

	// Redis 为可选项
	cfg.System.RedisConnectionString = v.GetString("system.redis_conn")
	cfg.System.CacheTTL = v.GetDuration("system.cache_ttl")
	if cfg.System.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive")
	}

	if cfg.Security.SignatureSecretKey = v.GetString("security.signature_secret_key"); cfg.Security.SignatureSecretKey == "" {
		return nil, fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	}
	cfg.Security.SignatureAlgorithm = strings.ToUpper(v.GetString("security.signature_algorithm"))

	minutes := v.GetInt("security.access_token_minutes")
	if minutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_MINUTES must be positive, got %d", minutes)
	}
	cfg.Security.AccessTokenDuration = time.Duration(minutes) * time.Minute

	cfg.Security.PasswordHash = strings.ToLower(v.GetString("security.password_hash"))
	cfg.Security.BcryptCost = v.GetInt("security.bcrypt_cost")
	cfg.Security.ProtectManagement = v.GetBool("security.protect_management")

	cfg.Limits.AvatarMaxBytes = v.GetInt64("limits.avatar_max_bytes")
	if cfg.Limits.AvatarMaxBytes <= 0 {
		return nil, fmt.Errorf("AVATAR_MAX_BYTES must be positive")
	}

	return cfg, nil
}
