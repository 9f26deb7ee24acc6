package main

import (
	"admin-backend/app/server/apidocs"
	"admin-backend/app/server/auth"
	"admin-backend/app/server/cache"
	"admin-backend/app/server/config"
	"admin-backend/app/server/constants"
	"admin-backend/app/server/handlers"
	"admin-backend/app/server/inits"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

// deps 是各命令共用的依赖
type deps struct {
	cfg    *config.Config
	l      *zap.Logger
	rdb    *redis.Client
	store  store.AdminStore
	hasher *password.Hasher
}

func (d *deps) Close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	_ = d.l.Sync()
}

func prepare(configFile string) (*deps, error) {
	// 初始化配置
	v, err := inits.NewViper(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	cfg, err := inits.Config(v)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd, zap.String("service", "admin-backend"), zap.String("version", version))
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	l.Debug("logger initialized")

	// 初始化数据库连接
	db, err := inits.DB(cfg.System.DBDriver, cfg.System.DBConnectionString)
	if err != nil {
		return nil, fmt.Errorf("error initializing DB connection: %w", err)
	}

	// 初始化 redis 连接
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		return nil, fmt.Errorf("error initializing Redis connection: %w", err)
	}

	hasher, err := password.New(cfg.Security.PasswordHash, cfg.Security.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error initializing password hasher: %w", err)
	}

	return &deps{
		cfg:    cfg,
		l:      l,
		rdb:    rdb,
		store:  store.NewGorm(db),
		hasher: hasher,
	}, nil
}

func runServe(ctx context.Context, configFile string) error {
	d, err := prepare(configFile)
	if err != nil {
		return err
	}
	defer d.Close()

	cfg, l := d.cfg, d.l

	m := metrics.New(prometheus.NewRegistry())

	s := d.store
	if d.rdb != nil {
		s = cache.NewAdminStore(s, d.rdb, cfg.System.CacheTTL, l, m)
		l.Info("admin cache enabled", zap.Duration("ttl", cfg.System.CacheTTL))
	}

	// 初始化 JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey, cfg.Security.SignatureAlgorithm, cfg.Security.AccessTokenDuration)
	if err != nil {
		return fmt.Errorf("error initializing JWT: %w", err)
	}

	flow := auth.NewFlow(s, d.hasher, j, l, m)

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.String("request_id", v.RequestID),
				zap.Duration("latency", v.Latency),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 绑定 echo 服务
	handlers.NewApp(l, s, flow, d.hasher, m, cfg).Register(e)

	// 添加 API 文档
	if !cfg.System.IsProd {
		if swg, err := apidocs.AdminSpec(version); err != nil {
			l.Error("error initializing admin openapi document", zap.Error(err))
		} else if swgJson, err := swg.MarshalJSON(); err != nil {
			l.Error("error initializing admin openapi document", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc(constants.APIPrefix, swgJson, apidocs.WithTitle(swg.Info.Title)))
		}
	}

	if !cfg.Security.ProtectManagement {
		l.Warn("management routes are not protected")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 启动 echo 服务
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.System.Listen)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutting down the server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
