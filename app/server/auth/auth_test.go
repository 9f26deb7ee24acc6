package auth

import (
	"admin-backend/app/server/inits"
	"admin-backend/app/server/jwt"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"strings"
	"testing"
	"time"
)

type testEnv struct {
	store  *store.Gorm
	hasher *password.Hasher
	jwt    *jwt.JWT
	m      *metrics.Metrics
	flow   *Flow
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := inits.DB("sqlite", ":memory:")
	require.NoError(t, err)

	h, err := password.New(password.SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		store:  store.NewGorm(db),
		hasher: h,
		m:      metrics.New(prometheus.NewRegistry()),
		now:    time.Now(),
	}

	env.jwt, err = jwt.New("test-secret", "HS256", 30*time.Minute, jwt.WithClock(func() time.Time { return env.now }))
	require.NoError(t, err)

	env.flow = NewFlow(env.store, env.hasher, env.jwt, zap.NewNop(), env.m)
	return env
}

func (e *testEnv) createAdmin(t *testing.T, name, email, plain string) uint {
	t.Helper()
	hash, err := e.hasher.Hash(plain)
	require.NoError(t, err)
	admin, err := e.store.Insert(context.Background(), store.CreateAdmin{Name: name, Email: email, PasswordHash: hash})
	require.NoError(t, err)
	return admin.ID
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "Ann", "ann@x.com", "secret123")

	token, err := env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.WithinDuration(t, env.now.Add(30*time.Minute), token.ExpiresAt, time.Second)

	claims, err := env.flow.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", claims.Subject)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.m.LoginsTotal.WithLabelValues(metrics.LoginSuccess)))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "Ann", "ann@x.com", "secret123")

	_, wrongPassword := env.flow.Login(ctx, "ann@x.com", "wrong")
	_, unknownEmail := env.flow.Login(ctx, "nobody@x.com", "secret123")

	assert.ErrorIs(t, wrongPassword, ErrAuthenticationFailed)
	assert.ErrorIs(t, unknownEmail, ErrAuthenticationFailed)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, float64(2), testutil.ToFloat64(env.m.LoginsTotal.WithLabelValues(metrics.LoginFailed)))
}

func TestLogin_RehashesLegacyHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy, err := password.New(password.SchemeArgon2id, 0)
	require.NoError(t, err)
	hash, err := legacy.Hash("secret123")
	require.NoError(t, err)
	admin, err := env.store.Insert(ctx, store.CreateAdmin{Email: "ann@x.com", PasswordHash: hash})
	require.NoError(t, err)

	_, err = env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)

	got, err := env.store.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Password, "$2a$"))
	assert.False(t, env.hasher.NeedsRehash(got.Password))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.m.LoginsTotal.WithLabelValues(metrics.LoginRehashed)))

	// 更新后的 hash 仍然可以登录
	_, err = env.flow.Login(ctx, "ann@x.com", "secret123")
	assert.NoError(t, err)
}

func TestLogin_DisabledAccountStoppedAtResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createAdmin(t, "Ann", "ann@x.com", "secret123")
	require.NoError(t, env.store.UpdateFields(ctx, id, store.UpdateStatus{Disabled: true}))

	token, err := env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)

	_, err = env.flow.Authenticate(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createAdmin(t, "Ann", "ann@x.com", "secret123")

	token, err := env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)

	admin, err := env.flow.Authenticate(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, "Ann", admin.Name)
}

func TestAuthenticate_DeletedAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createAdmin(t, "Ann", "ann@x.com", "secret123")

	token, err := env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, env.store.Delete(ctx, id))

	_, err = env.flow.Authenticate(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrCredentialsInvalid)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.m.TokenRejectionsTotal.WithLabelValues("unknown_subject")))
}

func TestValidateToken_CollapsesFailureKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "Ann", "ann@x.com", "secret123")

	token, err := env.flow.Login(ctx, "ann@x.com", "secret123")
	require.NoError(t, err)

	other, err := jwt.New("other-secret", "HS256", time.Minute)
	require.NoError(t, err)
	forged, _, err := other.Issue("ann@x.com", 0, nil)
	require.NoError(t, err)

	_, errSignature := env.flow.ValidateToken(forged)
	_, errMalformed := env.flow.ValidateToken("garbage")

	env.now = env.now.Add(time.Hour)
	_, errExpired := env.flow.ValidateToken(token.AccessToken)

	for _, err := range []error{errSignature, errMalformed, errExpired} {
		assert.ErrorIs(t, err, ErrCredentialsInvalid)
		assert.Equal(t, ErrCredentialsInvalid.Error(), err.Error())
	}

	for _, reason := range []string{"invalid_signature", "malformed", "expired"} {
		assert.Equal(t, float64(1), testutil.ToFloat64(env.m.TokenRejectionsTotal.WithLabelValues(reason)), reason)
	}
}
