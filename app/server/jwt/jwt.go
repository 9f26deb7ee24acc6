package jwt

import (
	"admin-backend/app/server/constants"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformed        = errors.New("token is malformed")
	ErrExpired          = errors.New("token is expired")
)

// 由签发方维护，调用方不能覆盖
var registeredClaims = map[string]struct{}{
	"sub": {},
	"exp": {},
	"iat": {},
	"jti": {},
}

type JWT struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*JWT)

// WithClock 替换时间来源，用于测试
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// Claims 是校验通过的令牌内容
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	ID        string
	Extra     map[string]any
}

func New(key string, algorithm string, ttl time.Duration, opts ...Option) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	if algorithm == "" {
		algorithm = constants.AuthTokenAlgorithm
	}
	var method jwt.SigningMethod
	switch algorithm {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}

	if ttl <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", ttl)
	}

	j := &JWT{
		key:    []byte(key),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

func (j *JWT) Algorithm() string {
	return j.method.Alg()
}

func (j *JWT) Duration() time.Duration {
	return j.ttl
}

// Issue 签发令牌， ttl 不为正数时使用默认有效期
func (j *JWT) Issue(subject string, ttl time.Duration, extra map[string]any) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("subject is empty")
	}
	if ttl <= 0 {
		ttl = j.ttl
	}

	now := j.now()
	// exp 只精确到秒，向上取整，令牌不会早于 now + ttl 失效
	expires := now.Add(ttl)
	if whole := expires.Truncate(jwt.TimePrecision); whole.Before(expires) {
		expires = whole.Add(jwt.TimePrecision)
	}

	// 创建声明
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["exp"] = jwt.NewNumericDate(expires)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["jti"] = uuid.NewString()

	// 签名并返回
	token, err := jwt.NewWithClaims(j.method, claims).SignedString(j.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expires, nil
}

// Validate 校验签名、格式与有效期，返回三种错误之一
func (j *JWT) Validate(tokenString string) (*Claims, error) {
	if len(tokenString) == 0 {
		return nil, fmt.Errorf("%w: token string is empty", ErrMalformed)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	// 匹配内容
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrMalformed)
	}

	res := &Claims{
		Subject:   sub,
		ExpiresAt: exp.Time,
		Extra:     map[string]any{},
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		res.IssuedAt = iat.Time
	}
	if jti, ok := claims["jti"].(string); ok {
		res.ID = jti
	}
	for k, v := range claims {
		if _, reserved := registeredClaims[k]; !reserved {
			res.Extra[k] = v
		}
	}

	return res, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
