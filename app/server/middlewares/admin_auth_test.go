package middlewares

import (
	"admin-backend/app/server/auth"
	"admin-backend/app/server/constants"
	"admin-backend/app/server/inits"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/models"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"context"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type authEnv struct {
	e     *echo.Echo
	store *store.Gorm
	jwt   *jwt.JWT
}

func newAuthEnv(t *testing.T, skipper func(c echo.Context) bool) *authEnv {
	t.Helper()

	db, err := inits.DB("sqlite", ":memory:")
	require.NoError(t, err)
	s := store.NewGorm(db)

	h, err := password.New(password.SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	j, err := jwt.New("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	flow := auth.NewFlow(s, h, j, zap.NewNop(), metrics.New(prometheus.NewRegistry()))

	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		admin, ok := c.Get(constants.ContextKeyAdmin).(*models.Admin)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, admin.Email)
	}, AdminAuth(flow, zap.NewNop(), skipper))

	return &authEnv{e: e, store: s, jwt: j}
}

func (env *authEnv) get(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuth(t *testing.T) {
	env := newAuthEnv(t, nil)

	_, err := env.store.Insert(context.Background(), store.CreateAdmin{
		Name: "Ann", Email: "ann@x.com", PasswordHash: "unused",
	})
	require.NoError(t, err)

	tok, _, err := env.jwt.Issue("ann@x.com", 0, nil)
	require.NoError(t, err)

	rec := env.get("Bearer " + tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@x.com", rec.Body.String())

	// scheme 不区分大小写
	rec = env.get("bearer " + tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuth_Rejected(t *testing.T) {
	env := newAuthEnv(t, nil)

	other, err := jwt.New("other-secret", "HS256", time.Minute)
	require.NoError(t, err)
	forged, _, err := other.Issue("ann@x.com", 0, nil)
	require.NoError(t, err)
	unknown, _, err := env.jwt.Issue("ghost@x.com", 0, nil)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic abc",
		"malformed":     "Bearer not-a-token",
		"wrong secret":  "Bearer " + forged,
		"unknown admin": "Bearer " + unknown,
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.get(header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, constants.AuthChallengeHeader, rec.Header().Get(echo.HeaderWWWAuthenticate))
			assert.JSONEq(t, `{"message":"`+MessageCredentialsInvalid+`"}`, rec.Body.String())
		})
	}
}

func TestAdminAuth_Inactive(t *testing.T) {
	env := newAuthEnv(t, nil)

	admin, err := env.store.Insert(context.Background(), store.CreateAdmin{
		Name: "Ann", Email: "ann@x.com", PasswordHash: "unused",
	})
	require.NoError(t, err)
	err = env.store.UpdateFields(context.Background(), admin.ID, store.UpdateStatus{Disabled: true})
	require.NoError(t, err)

	tok, _, err := env.jwt.Issue("ann@x.com", 0, nil)
	require.NoError(t, err)

	rec := env.get("Bearer " + tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"`+MessageInactiveAccount+`"}`, rec.Body.String())
}

func TestAdminAuth_Skipped(t *testing.T) {
	env := newAuthEnv(t, func(c echo.Context) bool { return true })

	rec := env.get("")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	// 跳过时即使带了无效 token 也不检查
	rec = env.get("Bearer not-a-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}
