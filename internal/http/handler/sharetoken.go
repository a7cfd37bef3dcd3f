package handler

import (
	"context"
	"net/http"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/sharetoken"
	apperrors "mediaflow/pkg/errors"
	"mediaflow/pkg/token"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const msgFailedGenerateToken = "Failed to generate share token"

type ShareTokenHandler struct {
	tokens      ShareTokenRepository
	events      EventRepository
	projects    ProjectRepository
	baseURL     string
	now         func() time.Time
	generate    func() (string, error)
	auditLogger AuditLogger
}

func NewShareTokenHandler(tokens ShareTokenRepository, events EventRepository, projects ProjectRepository, baseURL string, auditLogger AuditLogger) *ShareTokenHandler {
	return &ShareTokenHandler{
		tokens:      tokens,
		events:      events,
		projects:    projects,
		baseURL:     baseURL,
		now:         time.Now,
		generate:    token.GenerateShareToken,
		auditLogger: auditLogger,
	}
}

type CreateShareTokenRequest struct {
	Type          sharetoken.Type `json:"type" validate:"required,oneof=VALIDATOR MEDIA"`
	Label         *string         `json:"label" validate:"omitempty,max=255"`
	ExpiresInDays *int            `json:"expiresInDays" validate:"omitempty,min=1,max=365"`
}

func (h *ShareTokenHandler) CreateEventToken(c echo.Context) error {
	return h.create(c, h.eventScope)
}

func (h *ShareTokenHandler) CreateProjectToken(c echo.Context) error {
	return h.create(c, h.projectScope)
}

func (h *ShareTokenHandler) ListEventTokens(c echo.Context) error {
	return h.list(c, h.eventScope)
}

func (h *ShareTokenHandler) ListProjectTokens(c echo.Context) error {
	return h.list(c, h.projectScope)
}

type scopeResolver func(ctx context.Context, actor access.Actor, id uuid.UUID) (sharetoken.Scope, error)

func (h *ShareTokenHandler) eventScope(ctx context.Context, actor access.Actor, id uuid.UUID) (sharetoken.Scope, error) {
	if _, err := ownedEvent(ctx, h.events, actor, id); err != nil {
		return sharetoken.Scope{}, err
	}
	return sharetoken.EventScope(id), nil
}

func (h *ShareTokenHandler) projectScope(ctx context.Context, actor access.Actor, id uuid.UUID) (sharetoken.Scope, error) {
	if _, err := ownedProject(ctx, h.projects, actor, id); err != nil {
		return sharetoken.Scope{}, err
	}
	return sharetoken.ProjectScope(id), nil
}

func (h *ShareTokenHandler) create(c echo.Context, resolve scopeResolver) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req CreateShareTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	scope, err := resolve(ctx, actor, id)
	if err != nil {
		return err
	}

	input := sharetoken.CreateInput{
		Type:          req.Type,
		Label:         trimmedOrNil(req.Label),
		ExpiresInDays: req.ExpiresInDays,
		Scope:         scope,
	}
	if err := input.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	raw, err := h.generate()
	if err != nil {
		return apperrors.InternalServer(msgFailedGenerateToken, err)
	}

	st, err := h.tokens.Create(ctx, sharetoken.NewRecord{
		Token:     raw,
		Type:      input.Type,
		Label:     input.Label,
		ExpiresAt: input.ExpiresAt(h.now()),
		Scope:     input.Scope,
	})
	if err != nil {
		h.auditLogger.LogError(c, audit.ResourceTypeShareToken, nil, audit.ActionShare, err)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeShareToken, &st.ID, audit.ActionShare, audit.StatusSuccess, map[string]any{
		"type":      st.Type,
		"eventId":   st.EventID,
		"projectId": st.ProjectID,
		"prefix":    token.Prefix(st.Token),
	})

	return c.JSON(http.StatusCreated, sharetoken.Created{
		ShareToken: st,
		URL:        sharetoken.URL(h.baseURL, st.Type, st.Token),
	})
}

func (h *ShareTokenHandler) list(c echo.Context, resolve scopeResolver) error {
	actor, _, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	scope, err := resolve(ctx, actor, id)
	if err != nil {
		return err
	}

	tokens, err := h.tokens.ListByScope(ctx, scope)
	if err != nil {
		return err
	}

	views := make([]sharetoken.Created, 0, len(tokens))
	for _, st := range tokens {
		views = append(views, sharetoken.Created{
			ShareToken: st,
			URL:        sharetoken.URL(h.baseURL, st.Type, st.Token),
		})
	}

	return c.JSON(http.StatusOK, views)
}
