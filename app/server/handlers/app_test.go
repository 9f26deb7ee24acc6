package handlers

import (
	"admin-backend/app/server/auth"
	"admin-backend/app/server/cache"
	"admin-backend/app/server/config"
	"admin-backend/app/server/inits"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"bytes"
	"encoding/json"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type testServer struct {
	e     *echo.Echo
	store store.AdminStore
	cfg   *config.Config
}

type serverOption func(t *testing.T, cfg *config.Config, s *store.AdminStore)

func withCache() serverOption {
	return func(t *testing.T, cfg *config.Config, s *store.AdminStore) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		*s = cache.NewAdminStore(*s, rdb, time.Minute, zap.NewNop(), nil)
	}
}

func withConfig(mutate func(cfg *config.Config)) serverOption {
	return func(t *testing.T, cfg *config.Config, s *store.AdminStore) {
		mutate(cfg)
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Security.SignatureSecretKey = "test-secret"
	cfg.Security.SignatureAlgorithm = "HS256"
	cfg.Security.AccessTokenDuration = 30 * time.Minute
	cfg.Security.ProtectManagement = true
	cfg.Limits.AvatarMaxBytes = 16

	db, err := inits.DB("sqlite", ":memory:")
	require.NoError(t, err)
	var s store.AdminStore = store.NewGorm(db)

	for _, opt := range opts {
		opt(t, cfg, &s)
	}

	h, err := password.New(password.SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	j, err := jwt.New(cfg.Security.SignatureSecretKey, cfg.Security.SignatureAlgorithm, cfg.Security.AccessTokenDuration)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	flow := auth.NewFlow(s, h, j, zap.NewNop(), m)

	e := echo.New()
	NewApp(zap.NewNop(), s, flow, h, m, cfg).Register(e)

	return &testServer{e: e, store: s, cfg: cfg}
}

func (ts *testServer) do(t *testing.T, method, target, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	return ts.do(t, method, target, token, echo.MIMEApplicationJSON, r)
}

func (ts *testServer) login(t *testing.T, email, plain string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {email}, "password": {plain}}
	return ts.do(t, http.MethodPost, "/api/admin/login", "", echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
}

func (ts *testServer) mustLogin(t *testing.T, email, plain string) string {
	t.Helper()
	rec := ts.login(t, email, plain)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res["access_token"].(string)
}

// bootstrap 创建第一个管理员并登录
func (ts *testServer) bootstrap(t *testing.T) string {
	t.Helper()
	rec := ts.doJSON(t, http.MethodPost, "/api/admin", "", map[string]string{
		"name": "Root", "email": "root@x.com", "password": "rootpass1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return ts.mustLogin(t, "root@x.com", "rootpass1")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
