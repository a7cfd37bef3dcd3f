package handler

import (
	"net/http"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/project"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/review"
	apperrors "mediaflow/pkg/errors"

	"github.com/labstack/echo/v4"
)

type ValidateHandler struct {
	events      EventRepository
	projects    ProjectRepository
	media       MediaRepository
	signer      URLSigner
	review      Transitioner
	auditLogger AuditLogger
}

func NewValidateHandler(events EventRepository, projects ProjectRepository, mediaRepo MediaRepository, signer URLSigner, reviewer Transitioner, auditLogger AuditLogger) *ValidateHandler {
	return &ValidateHandler{
		events:      events,
		projects:    projects,
		media:       mediaRepo,
		signer:      signer,
		review:      reviewer,
		auditLogger: auditLogger,
	}
}

// TokenInfo is the part of a share token its holder may see.
type TokenInfo struct {
	Type  sharetoken.Type `json:"type"`
	Label *string         `json:"label"`
}

type ValidationView struct {
	Token   TokenInfo        `json:"token"`
	Event   *event.Event     `json:"event,omitempty"`
	Project *project.Project `json:"project,omitempty"`
	Media   []MediaView      `json:"media"`
}

type PhotoDecisionRequest struct {
	Status media.Status `json:"status"`
}

func shareToken(c echo.Context) (*sharetoken.ShareToken, error) {
	actor, ok := access.ActorFrom(c)
	if !ok {
		return nil, apperrors.InvalidToken()
	}
	tok, ok := actor.Token()
	if !ok {
		return nil, apperrors.InvalidToken()
	}
	return tok, nil
}

// GetValidation lists everything a VALIDATOR token can review: the scoped
// event or project and all of its media with preview links.
func (h *ValidateHandler) GetValidation(c echo.Context) error {
	tok, err := shareToken(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	view := ValidationView{Token: TokenInfo{Type: tok.Type, Label: tok.Label}}
	filter := media.ListFilter{}

	switch {
	case tok.EventID != nil:
		if view.Event, err = h.events.GetByID(ctx, *tok.EventID); err != nil {
			return err
		}
		filter.EventID = tok.EventID
	case tok.ProjectID != nil:
		if view.Project, err = h.projects.GetByID(ctx, *tok.ProjectID); err != nil {
			return err
		}
		filter.ProjectID = tok.ProjectID
	default:
		return apperrors.InvalidToken()
	}

	items, err := h.media.List(ctx, filter)
	if err != nil {
		return err
	}
	view.Media = signedViews(ctx, c, h.signer, items)

	return c.JSON(http.StatusOK, view)
}

// DecidePhoto approves or rejects one photo of the token's event.
func (h *ValidateHandler) DecidePhoto(c echo.Context) error {
	tok, err := shareToken(c)
	if err != nil {
		return err
	}

	photoID, err := parseUUIDParam(c, paramPhotoID)
	if err != nil {
		return err
	}

	var req PhotoDecisionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if req.Status != media.StatusApproved && req.Status != media.StatusRejected {
		return apperrors.Validation(msgPhotoDecision)
	}

	if tok.EventID == nil {
		return apperrors.Forbidden(msgNotAuthorizedPhoto)
	}

	projection, err := h.review.Transition(c.Request().Context(), access.TokenActor(tok), photoID, review.Request{Status: req.Status, EventReview: true})
	if err != nil {
		status := audit.StatusFailure
		if apperrors.HasCode(err, apperrors.CodeForbidden) {
			status = audit.StatusDenied
		}
		h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &photoID, audit.ActionTransition, status, map[string]any{
			"to":    req.Status,
			"error": err.Error(),
		})
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &photoID, audit.ActionTransition, audit.StatusSuccess, map[string]any{
		"to": projection.Status,
	})

	return c.JSON(http.StatusOK, projection)
}
