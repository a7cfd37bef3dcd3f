package access

import (
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/rbac"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextKeyActor = "actor"

// Kind discriminates the two ways a request can be authorised.
type Kind int

const (
	KindNone Kind = iota
	KindSession
	KindToken
)

// Actor is resolved once per request and is either a session user or a
// share token, never both.
type Actor struct {
	kind        Kind
	user        *user.User
	token       *sharetoken.ShareToken
	permissions rbac.PermissionSet
}

// SessionActor wraps an authenticated user and the permissions of its role.
func SessionActor(u *user.User, perms rbac.PermissionSet) Actor {
	return Actor{kind: KindSession, user: u, permissions: perms}
}

// TokenActor wraps a validated share token. Token actors hold no role
// permissions; their reach is the token's scope.
func TokenActor(t *sharetoken.ShareToken) Actor {
	return Actor{kind: KindToken, token: t, permissions: rbac.PermissionSet{}}
}

func (a Actor) Kind() Kind {
	return a.kind
}

func (a Actor) User() (*user.User, bool) {
	return a.user, a.kind == KindSession
}

func (a Actor) Token() (*sharetoken.ShareToken, bool) {
	return a.token, a.kind == KindToken
}

func (a Actor) Can(perm rbac.Permission) bool {
	return a.permissions.Has(perm)
}

func (a Actor) Permissions() rbac.PermissionSet {
	return a.permissions
}

// IsAdmin is true only for ADMIN session users.
func (a Actor) IsAdmin() bool {
	return a.kind == KindSession && a.user.IsAdmin()
}

// ID returns the user or token id for logging and rate limiting.
func (a Actor) ID() uuid.UUID {
	switch a.kind {
	case KindSession:
		return a.user.ID
	case KindToken:
		return a.token.ID
	default:
		return uuid.Nil
	}
}

func SetActor(c echo.Context, a Actor) {
	c.Set(contextKeyActor, a)
}

// ActorFrom returns the actor stored on the request, if any.
func ActorFrom(c echo.Context) (Actor, bool) {
	a, ok := c.Get(contextKeyActor).(Actor)
	if !ok || a.kind == KindNone {
		return Actor{}, false
	}
	return a, true
}
