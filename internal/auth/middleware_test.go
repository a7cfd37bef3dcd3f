package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/rbac"
	"mediaflow/internal/rbac/presets"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uuid.UUID]*user.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

type fakeTokens struct {
	token    *sharetoken.ShareToken
	err      error
	required sharetoken.Type
	calls    int
}

func (f *fakeTokens) ValidateShareToken(_ context.Context, _ string, required sharetoken.Type) (*sharetoken.ShareToken, error) {
	f.calls++
	f.required = required
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

type fixture struct {
	jwt    *JWTService
	users  fakeUsers
	tokens *fakeTokens
	mw     *Middleware
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jwtService := NewJWTService(testSecret, time.Hour)
	users := fakeUsers{}
	tokens := &fakeTokens{}
	return &fixture{
		jwt:    jwtService,
		users:  users,
		tokens: tokens,
		mw:     NewMiddleware(jwtService, users, tokens, rbac.MustNew(presets.MediaFlow())),
	}
}

func (f *fixture) addUser(role user.Role, status user.Status) *user.User {
	u := &user.User{ID: uuid.New(), Email: "someone@example.org", Role: role, Status: status}
	f.users[u.ID] = u
	return u
}

func (f *fixture) bearer(t *testing.T, u *user.User) string {
	t.Helper()
	token, err := f.jwt.Generate(u.ID)
	require.NoError(t, err)
	return "Bearer " + token
}

func newContext(target, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func captureActor(got *access.Actor) echo.HandlerFunc {
	return func(c echo.Context) error {
		a, _ := access.ActorFrom(c)
		*got = a
		return c.NoContent(http.StatusOK)
	}
}

func TestRequireAuth_NoSession(t *testing.T) {
	f := newFixture(t)
	c, _ := newContext("/api/events", "")

	err := f.mw.RequireAuth()(captureActor(new(access.Actor)))(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	f := newFixture(t)
	token, err := f.jwt.Generate(uuid.New())
	require.NoError(t, err)
	c, _ := newContext("/api/events", "Bearer "+token)

	err = f.mw.RequireAuth()(captureActor(new(access.Actor)))(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestRequireAuth_InactiveUser(t *testing.T) {
	f := newFixture(t)
	for _, status := range []user.Status{user.StatusPending, user.StatusRejected} {
		u := f.addUser(user.RoleAdmin, status)
		c, _ := newContext("/api/events", f.bearer(t, u))

		err := f.mw.RequireAuth()(captureActor(new(access.Actor)))(c)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAccountInactive), "status=%s", status)
	}
}

func TestRequireAuth_ActiveUserGetsRolePermissions(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(user.RoleMedia, user.StatusActive)
	c, _ := newContext("/api/events", f.bearer(t, u))

	var got access.Actor
	require.NoError(t, f.mw.RequireAuth()(captureActor(&got))(c))

	sessionUser, ok := got.User()
	require.True(t, ok)
	assert.Equal(t, u.ID, sessionUser.ID)
	assert.True(t, got.Can(presets.EventsShare))
	assert.False(t, got.Can(presets.UsersView))
}

func TestRequireAuth_SessionCookie(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(user.RoleMedia, user.StatusActive)
	token, err := f.jwt.Generate(u.ID)
	require.NoError(t, err)

	c, _ := newContext("/api/events", "")
	c.Request().AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	assert.NoError(t, f.mw.RequireAuth()(captureActor(new(access.Actor)))(c))
	assert.True(t, SessionFromCookie(c))
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)

	member := f.addUser(user.RoleMedia, user.StatusActive)
	c, _ := newContext("/api/users", f.bearer(t, member))
	err := f.mw.RequireAdmin()(captureActor(new(access.Actor)))(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	admin := f.addUser(user.RoleAdmin, user.StatusActive)
	c, _ = newContext("/api/users", f.bearer(t, admin))
	assert.NoError(t, f.mw.RequireAdmin()(captureActor(new(access.Actor)))(c))
}

func TestRequirePermission(t *testing.T) {
	f := newFixture(t)
	member := f.addUser(user.RoleMedia, user.StatusActive)
	c, _ := newContext("/api/churches", f.bearer(t, member))

	chain := f.mw.RequireAuth()(f.mw.RequirePermission(presets.ChurchesManage)(captureActor(new(access.Actor))))
	assert.True(t, apperrors.HasCode(chain(c), apperrors.CodeForbidden))

	c, _ = newContext("/api/churches", f.bearer(t, member))
	chain = f.mw.RequireAuth()(f.mw.RequirePermission(presets.ChurchesView)(captureActor(new(access.Actor))))
	assert.NoError(t, chain(c))
}

func TestResolveActor_TokenWinsOverSession(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(user.RoleAdmin, user.StatusActive)
	f.tokens.err = apperrors.TokenExpired()

	c, _ := newContext("/api/media/x/status?token=abc", f.bearer(t, u))
	err := f.mw.ResolveActor(sharetoken.TypeAny)(captureActor(new(access.Actor)))(c)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeTokenExpired))
	assert.Equal(t, sharetoken.TypeAny, f.tokens.required)
}

func TestResolveActor_Token(t *testing.T) {
	f := newFixture(t)
	f.tokens.token = &sharetoken.ShareToken{ID: uuid.New(), Type: sharetoken.TypeValidator}

	c, _ := newContext("/api/media/x/status?token=abc", "")
	var got access.Actor
	require.NoError(t, f.mw.ResolveActor(sharetoken.TypeAny)(captureActor(&got))(c))

	st, ok := got.Token()
	require.True(t, ok)
	assert.Equal(t, f.tokens.token.ID, st.ID)
}

func TestResolveActor_FallsBackToSession(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(user.RoleMedia, user.StatusActive)

	c, _ := newContext("/api/media/x/status", f.bearer(t, u))
	var got access.Actor
	require.NoError(t, f.mw.ResolveActor(sharetoken.TypeAny)(captureActor(&got))(c))

	assert.Equal(t, access.KindSession, got.Kind())
	assert.Equal(t, 0, f.tokens.calls)
}

func TestRequireShareToken_PassesRequiredType(t *testing.T) {
	f := newFixture(t)
	f.tokens.token = &sharetoken.ShareToken{ID: uuid.New(), Type: sharetoken.TypeValidator}

	c, _ := newContext("/api/validate/abc", "")
	c.SetParamNames(PathParamToken)
	c.SetParamValues("abc")

	require.NoError(t, f.mw.RequireShareToken(sharetoken.TypeValidator)(captureActor(new(access.Actor)))(c))
	assert.Equal(t, sharetoken.TypeValidator, f.tokens.required)
}

func TestPageGate(t *testing.T) {
	f := newFixture(t)
	next := func(c echo.Context) error { return c.String(http.StatusOK, "page") }

	t.Run("anonymous goes home", func(t *testing.T) {
		c, rec := newContext("/users", "")
		require.NoError(t, f.mw.PageGate(presets.UsersView)(next)(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("inactive passes through", func(t *testing.T) {
		u := f.addUser(user.RoleMedia, user.StatusPending)
		c, rec := newContext("/users", f.bearer(t, u))
		require.NoError(t, f.mw.PageGate(presets.UsersView)(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("active without permission goes to dashboard", func(t *testing.T) {
		u := f.addUser(user.RoleMedia, user.StatusActive)
		c, rec := newContext("/settings", f.bearer(t, u))
		require.NoError(t, f.mw.PageGate(presets.SettingsView)(next)(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("active admin sees page", func(t *testing.T) {
		u := f.addUser(user.RoleAdmin, user.StatusActive)
		c, rec := newContext("/settings", f.bearer(t, u))
		require.NoError(t, f.mw.PageGate(presets.SettingsView)(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
