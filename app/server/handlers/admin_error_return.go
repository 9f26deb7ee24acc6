package handlers

import (
	"admin-backend/app/server/types"
	"admin-backend/app/server/utils"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: utils.P(http.StatusText(statusCode)),
	})
}

// erMsg 用于需要告诉调用方具体原因的情况
func (a *App) erMsg(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: utils.P(message),
	})
}
