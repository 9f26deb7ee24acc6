// Package auth verifies admin credentials, issues access tokens and resolves
// bearer tokens back to admin records.
package auth

import (
	"admin-backend/app/server/constants"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/models"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"time"
)

var (
	// ErrAuthenticationFailed 不区分邮箱不存在和密码错误
	ErrAuthenticationFailed = errors.New("incorrect email or password")
	// ErrCredentialsInvalid 不区分令牌的具体错误原因
	ErrCredentialsInvalid = errors.New("could not validate credentials")
	ErrInactiveAccount    = errors.New("inactive user")
)

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type Flow struct {
	store  store.AdminStore
	hasher *password.Hasher
	jwt    *jwt.JWT
	l      *zap.Logger
	m      *metrics.Metrics

	dummyHash string // 邮箱不存在时也做一次校验，使两种失败耗时接近
}

func NewFlow(s store.AdminStore, h *password.Hasher, j *jwt.JWT, l *zap.Logger, m *metrics.Metrics) *Flow {
	f := &Flow{
		store:  s,
		hasher: h,
		jwt:    j,
		l:      l,
		m:      m,
	}

	if hash, err := h.Hash("dummy-password-for-timing"); err != nil {
		l.Warn("failed to prepare dummy hash", zap.Error(err))
	} else {
		f.dummyHash = hash
	}

	return f
}

func (f *Flow) Login(ctx context.Context, email string, plain string) (*Token, error) {
	admin, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.hasher.Verify(plain, f.dummyHash)
			f.m.Login(metrics.LoginFailed)
			return nil, ErrAuthenticationFailed
		}
		f.m.Login(metrics.LoginError)
		return nil, fmt.Errorf("find admin: %w", err)
	}

	// 提取密码 hash 并进行校验
	if !f.hasher.Verify(plain, admin.Password) {
		f.m.Login(metrics.LoginFailed)
		return nil, ErrAuthenticationFailed
	}

	// 旧方案或旧成本的 hash 在登录成功时顺便更新
	if f.hasher.NeedsRehash(admin.Password) {
		f.rehash(ctx, admin, plain)
	}

	// 签出 JWT
	token, expires, err := f.jwt.Issue(admin.Email, 0, nil)
	if err != nil {
		f.m.Login(metrics.LoginError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	f.m.Login(metrics.LoginSuccess)

	return &Token{
		AccessToken: token,
		TokenType:   constants.AuthTokenType,
		ExpiresAt:   expires,
	}, nil
}

func (f *Flow) rehash(ctx context.Context, admin *models.Admin, plain string) {
	hash, err := f.hasher.Hash(plain)
	if err != nil {
		f.l.Error("failed to rehash password", zap.Uint("id", admin.ID), zap.Error(err))
		return
	}
	if err = f.store.UpdateFields(ctx, admin.ID, store.UpdatePassword{PasswordHash: hash}); err != nil {
		f.l.Error("failed to store rehashed password", zap.Uint("id", admin.ID), zap.Error(err))
		return
	}
	f.m.Login(metrics.LoginRehashed)
}

// ValidateToken 只在日志和指标中保留具体原因
func (f *Flow) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := f.jwt.Validate(token)
	if err != nil {
		reason := rejectionReason(err)
		f.l.Debug("token rejected", zap.String("reason", reason), zap.Error(err))
		f.m.TokenRejected(reason)
		return nil, ErrCredentialsInvalid
	}
	return claims, nil
}

// Resolve 把令牌主体映射回管理员记录，记录被删除后令牌随之失效
func (f *Flow) Resolve(ctx context.Context, claims *jwt.Claims) (*models.Admin, error) {
	admin, err := f.store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.l.Debug("token subject not found", zap.String("sub", claims.Subject))
			f.m.TokenRejected("unknown_subject")
			return nil, ErrCredentialsInvalid
		}
		return nil, fmt.Errorf("resolve admin: %w", err)
	}

	if admin.Disabled {
		return nil, ErrInactiveAccount
	}

	return admin, nil
}

func (f *Flow) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := f.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return f.Resolve(ctx, claims)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return "expired"
	case errors.Is(err, jwt.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
