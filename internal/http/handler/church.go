package handler

import (
	"net/http"
	"strings"

	"mediaflow/internal/audit"
	"mediaflow/internal/domain/church"

	"github.com/labstack/echo/v4"
)

type ChurchHandler struct {
	churches    ChurchRepository
	auditLogger AuditLogger
}

func NewChurchHandler(churches ChurchRepository, auditLogger AuditLogger) *ChurchHandler {
	return &ChurchHandler{churches: churches, auditLogger: auditLogger}
}

type CreateChurchRequest struct {
	Name    string  `json:"name" validate:"notblank,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type UpdateChurchRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

func (h *ChurchHandler) ListChurches(c echo.Context) error {
	churches, err := h.churches.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, churches)
}

func (h *ChurchHandler) CreateChurch(c echo.Context) error {
	var req CreateChurchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ch, err := h.churches.Create(c.Request().Context(), church.CreateChurchInput{
		Name:    strings.TrimSpace(req.Name),
		Address: trimmedOrNil(req.Address),
	})
	if err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeChurch, nil, audit.ActionCreate, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeChurch, &ch.ID, audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"name": ch.Name,
	})

	return c.JSON(http.StatusCreated, ch)
}

func (h *ChurchHandler) UpdateChurch(c echo.Context) error {
	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateChurchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := church.UpdateChurchInput{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		input.Name = &name
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		input.Address = &address
	}

	ch, err := h.churches.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeChurch, &ch.ID, audit.ActionUpdate, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, ch)
}

func (h *ChurchHandler) DeleteChurch(c echo.Context) error {
	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	if err := h.churches.Delete(c.Request().Context(), id); err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeChurch, &id, audit.ActionDelete, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeChurch, &id, audit.ActionDelete, audit.StatusSuccess, nil)

	return c.NoContent(http.StatusNoContent)
}
