package handler

import (
	"net/http"
	"strconv"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	apperrors "mediaflow/pkg/errors"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
)

const (
	queryResourceType = "resourceType"
	queryResourceID   = "resourceId"
	queryActorID      = "actorId"
	queryAction       = "action"
	querySince        = "since"
	queryLimit        = "limit"
)

// Settings are the application values shown to administrators.
type Settings struct {
	BaseURL             string `json:"baseUrl"`
	MaxUploadSize       int64  `json:"maxUploadSize"`
	MaxUploadSizeHuman  string `json:"maxUploadSizeHuman"`
	SignedURLTTLSeconds int    `json:"signedUrlTtlSeconds"`
}

type SettingsHandler struct {
	settings Settings
	audit    AuditQuerier
}

func NewSettingsHandler(baseURL string, maxUploadSize int64, signedURLTTL time.Duration, auditQuerier AuditQuerier) *SettingsHandler {
	return &SettingsHandler{
		settings: Settings{
			BaseURL:             baseURL,
			MaxUploadSize:       maxUploadSize,
			MaxUploadSizeHuman:  humanize.Bytes(uint64(maxUploadSize)),
			SignedURLTTLSeconds: int(signedURLTTL.Seconds()),
		},
		audit: auditQuerier,
	}
}

// GetSettings runs behind the page gate, which lets inactive accounts
// through so they get an explanation instead of a redirect.
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	actor, ok := access.ActorFrom(c)
	if !ok {
		return apperrors.Unauthorized(msgAuthRequired)
	}
	if u, _ := actor.User(); u == nil || !u.IsActive() {
		return apperrors.AccountInactive()
	}

	return c.JSON(http.StatusOK, h.settings)
}

// ListAuditEvents returns recent audit events, newest first.
func (h *SettingsHandler) ListAuditEvents(c echo.Context) error {
	filter := audit.QueryFilter{}

	if v := c.QueryParam(queryResourceType); v != "" {
		rt := audit.ResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam(queryAction); v != "" {
		action := audit.Action(v)
		filter.Action = &action
	}

	var err error
	if filter.ResourceID, err = optionalUUIDQuery(c, queryResourceID); err != nil {
		return err
	}
	if filter.ActorID, err = optionalUUIDQuery(c, queryActorID); err != nil {
		return err
	}

	if v := c.QueryParam(querySince); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.Validation(msgInvalidSince)
		}
		filter.StartTime = &since
	}

	if v := c.QueryParam(queryLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return apperrors.Validation(msgInvalidLimit)
		}
		filter.Limit = limit
	}

	events, err := h.audit.Query(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}
