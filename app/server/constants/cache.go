package constants

import "time"

const (
	CacheKeyAdminByEmail         = "admin:info:email:%s"
	CacheKeyAdminGenerationEmail = "admin:info:gen:%s" // 每次写操作递增，防止旧数据被重新写入缓存
)

const (
	CacheExpireAdminInfo = 10 * time.Minute
)
