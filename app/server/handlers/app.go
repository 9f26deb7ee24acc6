package handlers

import (
	"admin-backend/app/server/auth"
	"admin-backend/app/server/config"
	"admin-backend/app/server/constants"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/middlewares"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type App struct {
	l      *zap.Logger      // 日志
	store  store.AdminStore // 管理员记录，可能带有缓存
	flow   *auth.Flow       // 登录与令牌认证
	hasher *password.Hasher // 密码 hash
	m      *metrics.Metrics // 指标
	cfg    *config.Config
}

func NewApp(l *zap.Logger, s store.AdminStore, flow *auth.Flow, hasher *password.Hasher, m *metrics.Metrics, cfg *config.Config) *App {
	return &App{
		l:      l,
		store:  s,
		flow:   flow,
		hasher: hasher,
		m:      m,
		cfg:    cfg,
	}
}

// Register 绑定全部路由
func (a *App) Register(e *echo.Echo) {
	e.Pre(middleware.RemoveTrailingSlash())

	requireAdmin := middlewares.AdminAuth(a.flow, a.l, nil)
	manage := middlewares.AdminAuth(a.flow, a.l, a.managementSkipper)

	e.GET("/healthz", a.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(a.m.Handler()))

	g := e.Group(constants.APIPrefix)

	// 登录与自身信息
	g.POST("/login", a.AuthLogin)
	g.GET("/me", a.AdminInfoGetSelf, requireAdmin)

	// 管理
	g.GET("", a.AdminList, manage)
	g.POST("", a.AdminCreate, manage)
	g.PUT("/avatar", a.AdminAvatarUpdate, manage)
	g.GET("/:admin_id", a.AdminInfoGet, manage)
	g.DELETE("/:admin_id", a.AdminDelete, manage)
	g.PUT("/:admin_id/name", a.AdminNameUpdate, manage)
	g.PUT("/:admin_id/email", a.AdminEmailUpdate, manage)
	g.PUT("/:admin_id/password", a.AdminPasswordUpdate, manage)
	g.PUT("/:admin_id/status", a.AdminStatusUpdate, manage)
}
