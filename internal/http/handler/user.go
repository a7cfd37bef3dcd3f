package handler

import (
	"net/http"

	"mediaflow/internal/audit"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/http/middleware"
	"mediaflow/internal/rbac"
	apperrors "mediaflow/pkg/errors"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users       UserRepository
	csrf        CSRFTokenIssuer
	auditLogger AuditLogger
}

func NewUserHandler(users UserRepository, csrf CSRFTokenIssuer, auditLogger AuditLogger) *UserHandler {
	return &UserHandler{users: users, csrf: csrf, auditLogger: auditLogger}
}

type UpdateUserRequest struct {
	Role   *user.Role   `json:"role"`
	Status *user.Status `json:"status"`
}

// MeResponse drives navigation: the caller and what it may do.
type MeResponse struct {
	User        *user.User        `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *UserHandler) Me(c echo.Context) error {
	actor, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	csrfToken, err := h.csrf.GetOrCreateToken(u.ID)
	if err != nil {
		return apperrors.InternalServer(msgFailedIssueCSRF, err)
	}
	c.Response().Header().Set(middleware.CSRFHeaderName, csrfToken)

	return c.JSON(http.StatusOK, MeResponse{
		User:        u,
		Permissions: actor.Permissions().List(),
	})
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	filter := user.ListFilter{}

	if raw := c.QueryParam(queryStatus); raw != "" {
		status := user.Status(raw)
		if !status.Valid() {
			return apperrors.Validation(msgInvalidUserStatus)
		}
		filter.Status = &status
	}

	if raw := c.QueryParam(queryRole); raw != "" {
		role := user.Role(raw)
		if !role.Valid() {
			return apperrors.Validation(msgInvalidRole)
		}
		filter.Role = &role
	}

	users, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// UpdateUser approves, rejects or re-roles an account. Admins cannot change
// their own account.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	_, me, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	if req.Role != nil && !req.Role.Valid() {
		return apperrors.Validation(msgInvalidRole)
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.Validation(msgInvalidUserStatus)
	}
	if id == me.ID {
		return apperrors.Forbidden(msgCannotDemoteSelf)
	}

	updated, err := h.users.Update(c.Request().Context(), id, user.UpdateUserInput{
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeUser, &id, audit.ActionUpdate, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeUser, &id, audit.ActionUpdate, audit.StatusSuccess, map[string]any{
		"role":   updated.Role,
		"status": updated.Status,
	})

	return c.JSON(http.StatusOK, updated)
}
