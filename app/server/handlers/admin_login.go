package handlers

import (
	"admin-backend/app/server/auth"
	"admin-backend/app/server/middlewares"
	"admin-backend/app/server/types"
	"admin-backend/app/server/utils"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

const messageLoginFailed = "Incorrect email or password"

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体，表单和 JSON 都可以
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind login body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == nil || req.Password == nil || *req.Username == "" {
		return a.er(c, http.StatusBadRequest)
	}

	token, err := a.flow.Login(rctx, *req.Username, *req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			return middlewares.Unauthorized(c, messageLoginFailed)
		}
		a.l.Error("failed to login", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 返回
	return c.JSON(http.StatusOK, &types.LoginToken{
		AccessToken: &token.AccessToken,
		TokenType:   &token.TokenType,
		ExpiresAt:   utils.P(token.ExpiresAt.UTC()),
	})
}
