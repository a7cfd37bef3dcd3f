package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/event"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateOnlyLayout = "2006-01-02"

type EventHandler struct {
	events      EventRepository
	keys        StorageKeyLister
	objects     ObjectWriter
	auditLogger AuditLogger
}

func NewEventHandler(events EventRepository, keys StorageKeyLister, objects ObjectWriter, auditLogger AuditLogger) *EventHandler {
	return &EventHandler{events: events, keys: keys, objects: objects, auditLogger: auditLogger}
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"notblank,max=255"`
	Date        string    `json:"date" validate:"required"`
	ChurchID    uuid.UUID `json:"churchId" validate:"required"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
}

type UpdateEventRequest struct {
	Name        *string       `json:"name" validate:"omitempty,notblank,max=255"`
	Date        *string       `json:"date"`
	ChurchID    *uuid.UUID    `json:"churchId"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	Status      *event.Status `json:"status"`
}

func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.Validation(msgInvalidDate)
}

// ownedEvent loads an event created by the session user. Events of other
// users are reported as missing.
func ownedEvent(ctx context.Context, events EventRepository, actor access.Actor, id uuid.UUID) (*event.Event, error) {
	e, err := events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsCreator(actor, e.CreatedByID) {
		return nil, apperrors.NotFound(msgEventNotFound)
	}
	return e, nil
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	_, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	filter := event.ListFilter{CreatedByID: &u.ID}

	if raw := c.QueryParam(queryStatus); raw != "" {
		status := event.Status(raw)
		if !status.Valid() {
			return apperrors.Validation(msgInvalidEventStatus)
		}
		filter.Status = &status
	}

	if filter.ChurchID, err = optionalUUIDQuery(c, queryChurchID); err != nil {
		return err
	}

	events, err := h.events.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	_, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return err
	}

	e, err := h.events.Create(c.Request().Context(), event.CreateEventInput{
		Name:        strings.TrimSpace(req.Name),
		Date:        date,
		ChurchID:    req.ChurchID,
		Description: trimmedOrNil(req.Description),
		CreatedByID: u.ID,
	})
	if err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeEvent, nil, audit.ActionCreate, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &e.ID, audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"name":     e.Name,
		"churchId": e.ChurchID,
	})

	return c.JSON(http.StatusCreated, e)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	e, err := h.events.GetWithStats(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !access.IsCreator(actor, e.CreatedByID) {
		return apperrors.NotFound(msgEventNotFound)
	}

	return c.JSON(http.StatusOK, e)
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := event.UpdateEventInput{
		ChurchID: req.ChurchID,
		Status:   req.Status,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		input.Name = &name
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return err
		}
		input.Date = &date
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		input.Description = &description
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.Validation(msgInvalidEventStatus)
	}

	ctx := c.Request().Context()
	if _, err := ownedEvent(ctx, h.events, actor, id); err != nil {
		return err
	}

	e, err := h.events.Update(ctx, id, input)
	if err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &id, audit.ActionUpdate, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, e)
}

// DeleteEvent removes every stored object of the event before the row, so a
// storage failure leaves the event in place to retry.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := ownedEvent(ctx, h.events, actor, id); err != nil {
		return err
	}

	keys, err := h.keys.StorageKeysByEvent(ctx, id)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := h.objects.DeleteMany(ctx, keys); err != nil {
			h.auditLogger.LogError(c, audit.ResourceTypeEvent, &id, audit.ActionDelete, err)
			return err
		}
	}

	if err := h.events.Delete(ctx, id); err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &id, audit.ActionDelete, audit.StatusSuccess, map[string]any{
		"objects": len(keys),
	})

	return c.NoContent(http.StatusNoContent)
}
