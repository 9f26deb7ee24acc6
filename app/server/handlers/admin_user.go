package handlers

import (
	"admin-backend/app/server/models"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"admin-backend/app/server/types"
	"admin-backend/app/server/utils"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

func adminInfo(admin *models.Admin) *types.AdminInfo {
	info := &types.AdminInfo{
		Id:        &admin.ID,
		Name:      &admin.Name,
		Email:     &admin.Email,
		Disabled:  &admin.Disabled,
		CreatedAt: utils.P(admin.CreatedAt.UTC()),
	}
	if len(admin.Avatar) > 0 {
		info.Avatar = &admin.Avatar
	}
	return info
}

// storeError 把 store 的错误映射为响应
func (a *App) storeError(c echo.Context, err error, msg string, fields ...zap.Field) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return a.er(c, http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateEmail):
		return a.erMsg(c, http.StatusConflict, "Email already registered")
	default:
		a.l.Error(msg, append(fields, zap.Error(err))...)
		return a.er(c, http.StatusInternalServerError)
	}
}

func (a *App) AdminCreate(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.AdminCreateRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Email == nil || req.Password == nil {
		return a.er(c, http.StatusBadRequest)
	}
	if !utils.ValidEmail(*req.Email) {
		return a.erMsg(c, http.StatusBadRequest, "Invalid email address")
	}
	if err := password.CheckPolicy(*req.Password); err != nil {
		return a.erMsg(c, http.StatusBadRequest, err.Error())
	}

	// 处理密码
	passwordHash, err := a.hasher.Hash(*req.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建管理员
	create := store.CreateAdmin{
		Email:        *req.Email,
		PasswordHash: passwordHash,
	}
	if req.Name != nil {
		create.Name = *req.Name
	}

	admin, err := a.store.Insert(rctx, create)
	if err != nil {
		return a.storeError(c, err, "failed to create admin", zap.String("email", create.Email))
	}

	return c.JSON(http.StatusCreated, adminInfo(admin))
}

func (a *App) AdminList(c echo.Context) error {
	rctx := c.Request().Context()

	var params types.AdminListParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	limit, offset, err := a.parsePagination(params.Limit, params.Offset)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, err.Error())
	}

	query := store.ListQuery{Limit: limit, Offset: offset}
	if params.Name != nil {
		query.Name = *params.Name
	}

	admins, total, err := a.store.List(rctx, query)
	if err != nil {
		a.l.Error("failed to get admin list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resAdmins := []*types.AdminInfo{}
	for i := range admins {
		resAdmins = append(resAdmins, adminInfo(&admins[i]))
	}

	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, resAdmins)
}

func (a *App) AdminInfoGetSelf(c echo.Context) error {
	// 这里比较特殊，没有指定 id ，直接使用认证中间件解析出的管理员
	admin, err := a.getAdmin(c)
	if err != nil {
		a.l.Error("failed to get admin", zap.Error(err))
		return a.er(c, http.StatusUnauthorized)
	}

	return c.JSON(http.StatusOK, adminInfo(admin))
}

func (a *App) AdminInfoGet(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	admin, err := a.store.FindByID(c.Request().Context(), id)
	if err != nil {
		return a.storeError(c, err, "failed to get admin", zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, adminInfo(admin))
}

// updateAndReturn 执行修改，然后返回修改后的记录
func (a *App) updateAndReturn(c echo.Context, id uint, update store.Update) error {
	rctx := c.Request().Context()

	if err := a.store.UpdateFields(rctx, id, update); err != nil {
		return a.storeError(c, err, "failed to update admin", zap.Uint("id", id))
	}

	admin, err := a.store.FindByID(rctx, id)
	if err != nil {
		return a.storeError(c, err, "failed to get admin", zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, adminInfo(admin))
}

func (a *App) AdminNameUpdate(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.AdminNameUpdateRequest
	if err = c.Bind(&req); err != nil || req.Name == nil {
		return a.er(c, http.StatusBadRequest)
	}

	return a.updateAndReturn(c, id, store.UpdateName{Name: *req.Name})
}

func (a *App) AdminEmailUpdate(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.AdminEmailUpdateRequest
	if err = c.Bind(&req); err != nil || req.Email == nil {
		return a.er(c, http.StatusBadRequest)
	}
	if !utils.ValidEmail(*req.Email) {
		return a.erMsg(c, http.StatusBadRequest, "Invalid email address")
	}

	return a.updateAndReturn(c, id, store.UpdateEmail{Email: *req.Email})
}

func (a *App) AdminPasswordUpdate(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.AdminPasswordUpdateRequest
	if err = c.Bind(&req); err != nil || req.Password == nil {
		return a.er(c, http.StatusBadRequest)
	}
	if err = password.CheckPolicy(*req.Password); err != nil {
		return a.erMsg(c, http.StatusBadRequest, err.Error())
	}

	newPasswordHash, err := a.hasher.Hash(*req.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err = a.store.UpdateFields(c.Request().Context(), id, store.UpdatePassword{PasswordHash: newPasswordHash}); err != nil {
		return a.storeError(c, err, "failed to update password", zap.Uint("id", id))
	}

	return c.NoContent(http.StatusOK)
}

func (a *App) AdminStatusUpdate(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 绑定请求体
	var req types.AdminStatusUpdateRequest
	if err = c.Bind(&req); err != nil || req.Disabled == nil {
		return a.er(c, http.StatusBadRequest)
	}

	return a.updateAndReturn(c, id, store.UpdateStatus{Disabled: *req.Disabled})
}

func (a *App) AdminDelete(c echo.Context) error {
	id, err := parseAdminID(c.Param("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 删除管理员
	if err = a.store.Delete(c.Request().Context(), id); err != nil {
		return a.storeError(c, err, "failed to delete admin", zap.Uint("id", id))
	}

	return c.NoContent(http.StatusNoContent)
}
