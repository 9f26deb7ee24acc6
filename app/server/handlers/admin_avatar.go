package handlers

import (
	"admin-backend/app/server/store"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"io"
	"net/http"
	"strings"
)

const avatarFormField = "avatar"

var errAvatarTooLarge = errors.New("avatar too large")

func (a *App) AdminAvatarUpdate(c echo.Context) error {
	id, err := parseAdminID(c.QueryParam("admin_id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	avatar, err := a.readAvatar(c)
	if err != nil {
		if errors.Is(err, errAvatarTooLarge) {
			return a.erMsg(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Avatar must be at most %d bytes", a.cfg.Limits.AvatarMaxBytes))
		}
		a.l.Debug("failed to read avatar", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if len(avatar) == 0 {
		return a.erMsg(c, http.StatusBadRequest, "Avatar is empty")
	}

	return a.updateAndReturn(c, id, store.UpdateAvatar{Avatar: avatar})
}

// readAvatar 支持 multipart 表单的 avatar 字段，或直接以请求体上传
func (a *App) readAvatar(c echo.Context) ([]byte, error) {
	maxBytes := a.cfg.Limits.AvatarMaxBytes
	req := c.Request()

	// 表单的边界和其他字段需要一些额外空间
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBytes+64<<10)

	var src io.Reader
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile(avatarFormField)
		if err != nil {
			return nil, tooLargeOr(err)
		}
		if fh.Size > maxBytes {
			return nil, errAvatarTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open avatar: %w", err)
		}
		defer f.Close()
		src = f
	} else {
		src = req.Body
	}

	avatar, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, tooLargeOr(err)
	}
	if int64(len(avatar)) > maxBytes {
		return nil, errAvatarTooLarge
	}

	return avatar, nil
}

func tooLargeOr(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return errAvatarTooLarge
	}
	return err
}
