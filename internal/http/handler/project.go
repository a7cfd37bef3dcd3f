package handler

import (
	"context"
	"net/http"
	"strings"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/project"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ProjectHandler struct {
	projects    ProjectRepository
	keys        StorageKeyLister
	objects     ObjectWriter
	auditLogger AuditLogger
}

func NewProjectHandler(projects ProjectRepository, keys StorageKeyLister, objects ObjectWriter, auditLogger AuditLogger) *ProjectHandler {
	return &ProjectHandler{projects: projects, keys: keys, objects: objects, auditLogger: auditLogger}
}

type CreateProjectRequest struct {
	Name        string    `json:"name" validate:"notblank,max=255"`
	ChurchID    uuid.UUID `json:"churchId" validate:"required"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name" validate:"omitempty,notblank,max=255"`
	ChurchID    *uuid.UUID `json:"churchId"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
}

// ownedProject loads a project the actor may change: its creator, or any
// admin. Other projects are reported as missing.
func ownedProject(ctx context.Context, projects ProjectRepository, actor access.Actor, id uuid.UUID) (*project.Project, error) {
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(actor, p.CreatedByID) {
		return nil, apperrors.NotFound(msgProjectNotFound)
	}
	return p, nil
}

func (h *ProjectHandler) ListProjects(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	filter := project.ListFilter{CreatedByID: access.OwnershipFilter(actor)}
	if filter.ChurchID, err = optionalUUIDQuery(c, queryChurchID); err != nil {
		return err
	}

	projects, err := h.projects.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	_, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.projects.Create(c.Request().Context(), project.CreateProjectInput{
		Name:        strings.TrimSpace(req.Name),
		ChurchID:    req.ChurchID,
		Description: trimmedOrNil(req.Description),
		CreatedByID: u.ID,
	})
	if err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeProject, nil, audit.ActionCreate, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeProject, &p.ID, audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"name":     p.Name,
		"churchId": p.ChurchID,
	})

	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	p, err := h.projects.GetWithStats(c.Request().Context(), id, access.OwnershipFilter(actor))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := project.UpdateProjectInput{ChurchID: req.ChurchID}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		input.Name = &name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		input.Description = &description
	}

	ctx := c.Request().Context()
	if _, err := ownedProject(ctx, h.projects, actor, id); err != nil {
		return err
	}

	p, err := h.projects.Update(ctx, id, input)
	if err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeProject, &id, audit.ActionUpdate, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, p)
}

// DeleteProject removes the original and thumbnail of every version of every
// item, then the project row; the rows of its media go with it.
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := ownedProject(ctx, h.projects, actor, id); err != nil {
		return err
	}

	keys, err := h.keys.StorageKeysByProject(ctx, id)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := h.objects.DeleteMany(ctx, keys); err != nil {
			h.auditLogger.LogError(c, audit.ResourceTypeProject, &id, audit.ActionDelete, err)
			return err
		}
	}

	if err := h.projects.Delete(ctx, id); err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeProject, &id, audit.ActionDelete, audit.StatusSuccess, map[string]any{
		"objects": len(keys),
	})

	return c.NoContent(http.StatusNoContent)
}
