package handlers

import (
	"admin-backend/app/server/constants"
	"admin-backend/app/server/models"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// getAdmin 取出认证中间件放入的管理员
func (a *App) getAdmin(c echo.Context) (*models.Admin, error) {
	admin, ok := c.Get(constants.ContextKeyAdmin).(*models.Admin)
	if !ok || admin == nil {
		return nil, fmt.Errorf("no admin in context")
	}
	return admin, nil
}

// managementSkipper 决定管理接口是否跳过认证
func (a *App) managementSkipper(c echo.Context) bool {
	if !a.cfg.Security.ProtectManagement {
		return true
	}

	// 还没有任何管理员的时候，允许不登录创建第一个
	if c.Request().Method == http.MethodPost && c.Path() == constants.APIPrefix {
		counter, err := a.store.Count(c.Request().Context())
		if err != nil {
			a.l.Error("failed to count admins", zap.Error(err))
			return false
		}
		return counter == 0
	}

	return false
}
