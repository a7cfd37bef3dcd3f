package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"mediaflow/internal/domain/user"
	"mediaflow/internal/http/middleware"
	"mediaflow/internal/rbac"
	"mediaflow/internal/rbac/presets"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	items   map[uuid.UUID]*user.User
	updated []user.UpdateUserInput
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context, user.ListFilter) ([]*user.WithEventCount, error) {
	out := []*user.WithEventCount{}
	for _, u := range f.items {
		out = append(out, &user.WithEventCount{User: *u})
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, id uuid.UUID, in user.UpdateUserInput) (*user.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.updated = append(f.updated, in)
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Status != nil {
		u.Status = *in.Status
	}
	return u, nil
}

func TestMe(t *testing.T) {
	u := newUser(user.RoleMedia)
	h := NewUserHandler(&fakeUsers{}, fakeCSRF{token: "csrf-123"}, &fakeAudit{})

	c, rec := jsonContext(http.MethodGet, "/api/me", "")
	withActor(c, sessionOf(u))

	require.NoError(t, h.Me(c))
	assert.Equal(t, "csrf-123", rec.Header().Get(middleware.CSRFHeaderName))

	var body struct {
		User        user.User         `json:"user"`
		Permissions []rbac.Permission `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, u.ID, body.User.ID)
	assert.Contains(t, body.Permissions, presets.PhotosUpload)
	assert.Contains(t, body.Permissions, presets.ChurchesView)
	assert.NotContains(t, body.Permissions, presets.UsersManage)
}

func TestMeCSRFFailure(t *testing.T) {
	h := NewUserHandler(&fakeUsers{}, fakeCSRF{err: errors.New("entropy")}, &fakeAudit{})
	c, _ := jsonContext(http.MethodGet, "/api/me", "")
	withActor(c, sessionOf(newUser(user.RoleAdmin)))

	err := h.Me(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestUpdateUser(t *testing.T) {
	admin := newUser(user.RoleAdmin)
	pending := newUser(user.RoleMedia)
	pending.Status = user.StatusPending
	users := &fakeUsers{items: map[uuid.UUID]*user.User{admin.ID: admin, pending.ID: pending}}
	h := NewUserHandler(users, fakeCSRF{}, &fakeAudit{})

	t.Run("activates another account", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPatch, "/", `{"status":"ACTIVE"}`)
		withParams(withActor(c, sessionOf(admin)), paramID, pending.ID.String())

		require.NoError(t, h.UpdateUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.StatusActive, pending.Status)
	})

	t.Run("cannot change own account", func(t *testing.T) {
		c, _ := jsonContext(http.MethodPatch, "/", `{"role":"MEDIA"}`)
		withParams(withActor(c, sessionOf(admin)), paramID, admin.ID.String())

		err := h.UpdateUser(c)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
		assert.Equal(t, user.RoleAdmin, admin.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		c, _ := jsonContext(http.MethodPatch, "/", `{"role":"OWNER"}`)
		withParams(withActor(c, sessionOf(admin)), paramID, pending.ID.String())

		err := h.UpdateUser(c)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})
}

func TestListUsersRejectsUnknownFilter(t *testing.T) {
	h := NewUserHandler(&fakeUsers{}, fakeCSRF{}, &fakeAudit{})
	c, _ := jsonContext(http.MethodGet, "/api/users?status=SLEEPING", "")
	withActor(c, sessionOf(newUser(user.RoleAdmin)))

	err := h.ListUsers(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
