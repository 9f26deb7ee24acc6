package middlewares

import (
	"admin-backend/app/server/auth"
	"admin-backend/app/server/constants"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/types"
	"admin-backend/app/server/utils"
	"errors"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"net/http"
)

const (
	MessageCredentialsInvalid = "Could not validate credentials"
	MessageInactiveAccount    = "Inactive user"
)

// AdminAuth 校验 bearer token 并把对应的管理员放入 context ，
// skipper 返回 true 时直接放行，此时 context 中没有管理员
func AdminAuth(flow *auth.Flow, l *zap.Logger, skipper middleware.Skipper) echo.MiddlewareFunc {
	parseToken := echojwt.WithConfig(echojwt.Config{
		Skipper:    skipper,
		ContextKey: constants.ContextKeyClaims,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := flow.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// 没有 token 和无效 token 返回同样的内容
			return Unauthorized(c, MessageCredentialsInvalid)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parseToken(func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextKeyClaims).(*jwt.Claims)
			if !ok {
				// 被跳过
				return next(c)
			}

			admin, err := flow.Resolve(c.Request().Context(), claims)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrCredentialsInvalid):
					return Unauthorized(c, MessageCredentialsInvalid)
				case errors.Is(err, auth.ErrInactiveAccount):
					return c.JSON(http.StatusBadRequest, &types.ErrorMessage{
						Message: utils.P(MessageInactiveAccount),
					})
				default:
					l.Error("failed to resolve admin", zap.String("sub", claims.Subject), zap.Error(err))
					return c.JSON(http.StatusInternalServerError, &types.ErrorMessage{
						Message: utils.P(http.StatusText(http.StatusInternalServerError)),
					})
				}
			}

			// 设置 context
			c.Set(constants.ContextKeyAdmin, admin)

			// 继续处理
			return next(c)
		})
	}
}

// Unauthorized 带上 WWW-Authenticate 头，提示客户端重新认证
func Unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, constants.AuthChallengeHeader)
	return c.JSON(http.StatusUnauthorized, &types.ErrorMessage{
		Message: utils.P(message),
	})
}
