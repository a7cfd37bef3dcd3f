package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mediaflow/internal/access"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/rbac"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type TokenValidator interface {
	ValidateShareToken(ctx context.Context, raw string, required sharetoken.Type) (*sharetoken.ShareToken, error)
}

// Middleware resolves the request actor, either from the session or from a
// share token, and stores it on the echo context.
type Middleware struct {
	jwtService *JWTService
	users      UserStore
	tokens     TokenValidator
	checker    *rbac.Checker
}

func NewMiddleware(jwtService *JWTService, users UserStore, tokens TokenValidator, checker *rbac.Checker) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		users:      users,
		tokens:     tokens,
		checker:    checker,
	}
}

// RequireAuth admits ACTIVE session users only.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := m.activeSession(c)
			if err != nil {
				return err
			}

			access.SetActor(c, actor)
			return next(c)
		}
	}
}

// RequireAdmin admits ACTIVE ADMIN session users only.
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := m.activeSession(c)
			if err != nil {
				return err
			}

			if !actor.IsAdmin() {
				return apperrors.Forbidden(msgAdminRequired)
			}

			access.SetActor(c, actor)
			return next(c)
		}
	}
}

// RequirePermission must run after RequireAuth.
func (m *Middleware) RequirePermission(perms ...rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := access.ActorFrom(c)
			if !ok {
				return apperrors.Unauthorized(msgAuthenticationRequired)
			}

			if !actor.Permissions().HasAll(perms...) {
				return apperrors.Forbidden(msgPermissionDenied)
			}

			return next(c)
		}
	}
}

// ResolveActor accepts either a ?token= share token or a session. When the
// query parameter is present the token decides alone, so a bad token fails
// even if a session cookie is also sent.
func (m *Middleware) ResolveActor(required sharetoken.Type) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := c.QueryParam(QueryParamToken); raw != "" {
				st, err := m.tokens.ValidateShareToken(c.Request().Context(), raw, required)
				if err != nil {
					return err
				}
				access.SetActor(c, access.TokenActor(st))
				return next(c)
			}

			actor, err := m.activeSession(c)
			if err != nil {
				return err
			}

			access.SetActor(c, actor)
			return next(c)
		}
	}
}

// RequireShareToken validates the :token path parameter.
func (m *Middleware) RequireShareToken(required sharetoken.Type) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st, err := m.tokens.ValidateShareToken(c.Request().Context(), c.Param(PathParamToken), required)
			if err != nil {
				return err
			}

			access.SetActor(c, access.TokenActor(st))
			return next(c)
		}
	}
}

// PageGate protects browser pages. Anonymous visitors go to the landing
// page; signed-in users who are not ACTIVE pass through so the page can
// explain their account state; ACTIVE users without perm go to the
// dashboard.
func (m *Middleware) PageGate(perm rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := m.session(c)
			if err != nil {
				if errors.Is(err, apperrors.ErrUnauthorized) {
					return c.Redirect(http.StatusFound, pathRoot)
				}
				return err
			}

			access.SetActor(c, actor)

			u, _ := actor.User()
			if !u.IsActive() {
				return next(c)
			}

			if !actor.Can(perm) {
				return c.Redirect(http.StatusFound, pathDashboard)
			}

			return next(c)
		}
	}
}

func (m *Middleware) activeSession(c echo.Context) (access.Actor, error) {
	actor, err := m.session(c)
	if err != nil {
		return access.Actor{}, err
	}

	u, _ := actor.User()
	if !u.IsActive() {
		return access.Actor{}, apperrors.AccountInactive()
	}

	return actor, nil
}

// session loads the user behind the session token without checking status.
func (m *Middleware) session(c echo.Context) (access.Actor, error) {
	raw, fromCookie := extractSessionToken(c)
	if raw == "" {
		return access.Actor{}, apperrors.Unauthorized(msgAuthenticationRequired)
	}

	userID, err := m.jwtService.Verify(raw)
	if err != nil {
		return access.Actor{}, apperrors.Unauthorized(msgAuthenticationRequired)
	}

	u, err := m.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return access.Actor{}, apperrors.Unauthorized(msgAuthenticationRequired)
		}
		return access.Actor{}, err
	}

	c.Set(contextKeySessionCookie, fromCookie)
	return access.SessionActor(u, m.checker.Permissions(rbac.Role(u.Role))), nil
}

// SessionFromCookie reports whether the session was read from the cookie
// rather than an Authorization header. Only cookie sessions need CSRF
// protection.
func SessionFromCookie(c echo.Context) bool {
	fromCookie, _ := c.Get(contextKeySessionCookie).(bool)
	return fromCookie
}

func extractSessionToken(c echo.Context) (string, bool) {
	if token := extractBearerToken(c); token != "" {
		return token, false
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}

	return cookie.Value, true
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}
