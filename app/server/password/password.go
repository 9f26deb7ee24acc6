// Package password hashes and verifies admin passwords.
//
// New hashes use the configured scheme (bcrypt or argon2id). Verification
// detects the scheme from the encoded hash, so stored hashes of either scheme
// keep working after the configuration changes.
package password

import (
	"admin-backend/app/server/constants"
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
	"strings"
	"unicode/utf8"
)

const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

var (
	ErrTooShort = fmt.Errorf("password must be at least %d characters", constants.PasswordMinLength)
	ErrTooLong  = fmt.Errorf("password must be at most %d bytes", constants.PasswordMaxBytes)
)

type Hasher struct {
	scheme     string
	bcryptCost int
	argonParam *argon2id.Params
}

func New(scheme string, bcryptCost int) (*Hasher, error) {
	switch scheme {
	case "", SchemeBcrypt:
		scheme = SchemeBcrypt
	case SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password hash scheme: %s", scheme)
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Hasher{
		scheme:     scheme,
		bcryptCost: bcryptCost,
		argonParam: argon2id.DefaultParams,
	}, nil
}

func (h *Hasher) Scheme() string {
	return h.scheme
}

// Hash 每次调用都会产生新的盐，因此同一密码的两次结果不同
func (h *Hasher) Hash(plain string) (string, error) {
	switch h.scheme {
	case SchemeArgon2id:
		hash, err := argon2id.CreateHash(plain, h.argonParam)
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return hash, nil
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(hash), nil
	}
}

// Verify 对于格式错误的 hash 只返回 false ，不暴露具体原因
func (h *Hasher) Verify(plain, hash string) bool {
	switch schemeOf(hash) {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	case SchemeArgon2id:
		match, err := argon2id.ComparePasswordAndHash(plain, hash)
		return err == nil && match
	default:
		return false
	}
}

// NeedsRehash 报告已存储的 hash 是否与当前配置的方案（或成本）不一致
func (h *Hasher) NeedsRehash(hash string) bool {
	scheme := schemeOf(hash)
	if scheme != h.scheme {
		return true
	}

	if scheme == SchemeBcrypt {
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != h.bcryptCost
	}

	params, _, _, err := argon2id.DecodeHash(hash)
	if err != nil {
		return true
	}
	return params.Memory != h.argonParam.Memory ||
		params.Iterations != h.argonParam.Iterations ||
		params.Parallelism != h.argonParam.Parallelism
}

// CheckPolicy 在创建和修改密码时检查强度，登录时不检查
func CheckPolicy(plain string) error {
	if utf8.RuneCountInString(plain) < constants.PasswordMinLength {
		return ErrTooShort
	}
	if len(plain) > constants.PasswordMaxBytes {
		return ErrTooLong
	}
	return nil
}

func IsPolicyError(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrTooLong)
}

func schemeOf(hash string) string {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(hash, "$argon2id$"):
		return SchemeArgon2id
	default:
		return ""
	}
}
