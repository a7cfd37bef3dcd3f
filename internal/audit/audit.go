package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mediaflow/internal/access"
	"mediaflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

const (
	asyncWriteTimeout     = 2 * time.Second
	defaultQueryLimit     = 100
	errFailedWriteFmt     = "audit log failed: %v\n"
	errFailedEncodeMetaFm = "failed to encode audit metadata: %w"
)

// ActorType represents the type of entity performing an action
type ActorType string

const (
	ActorTypeUser       ActorType = "user"
	ActorTypeShareToken ActorType = "share_token"
	ActorTypeSystem     ActorType = "system"
)

type ResourceType string

const (
	ResourceTypeChurch     ResourceType = "church"
	ResourceTypeUser       ResourceType = "user"
	ResourceTypeEvent      ResourceType = "event"
	ResourceTypeProject    ResourceType = "project"
	ResourceTypeMedia      ResourceType = "media"
	ResourceTypeComment    ResourceType = "comment"
	ResourceTypeShareToken ResourceType = "share_token"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionShare      Action = "share"
	ActionTransition Action = "transition"
	ActionUpload     Action = "upload"
	ActionDownload   Action = "download"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

type Event struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"eventType"`
	ActorType    ActorType      `json:"actorType"`
	ActorID      *uuid.UUID     `json:"actorId"`
	ResourceType ResourceType   `json:"resourceType"`
	ResourceID   *uuid.UUID     `json:"resourceId"`
	Action       Action         `json:"action"`
	Status       Status         `json:"status"`
	IPAddress    string         `json:"ipAddress"`
	UserAgent    string         `json:"userAgent"`
	RequestID    string         `json:"requestId"`
	Metadata     map[string]any `json:"metadata"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Logger writes audit_events rows. Writes triggered from a request run in
// the background so a slow insert never delays the response.
type Logger struct {
	db database
}

// NewLogger accepts a *pgxpool.Pool or anything else with the same Exec
// and Query methods.
func NewLogger(db database) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(logger.SanitizeMap(event.Metadata))
		if err != nil {
			return fmt.Errorf(errFailedEncodeMetaFm, err)
		}
	}

	query := `
		INSERT INTO audit_events (
			id, event_type, actor_type, actor_id, resource_type, resource_id,
			action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := l.db.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.ActorType,
		event.ActorID,
		event.ResourceType,
		event.ResourceID,
		event.Action,
		event.Status,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		metadataJSON,
		logger.SanitizeString(event.ErrorMessage),
		event.CreatedAt,
	)

	return err
}

// NewEvent captures request and actor details from c.
func NewEvent(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, status Status, metadata map[string]any) *Event {
	event := &Event{
		EventType:    string(action) + "_" + string(resourceType),
		ActorType:    ActorTypeSystem,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Metadata:     metadata,
	}

	if actor, ok := access.ActorFrom(c); ok {
		id := actor.ID()
		event.ActorID = &id
		switch actor.Kind() {
		case access.KindSession:
			event.ActorType = ActorTypeUser
		case access.KindToken:
			event.ActorType = ActorTypeShareToken
		}
	}

	return event
}

// LogFromContext records a successful or denied action asynchronously.
func (l *Logger) LogFromContext(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, status Status, metadata map[string]any) {
	l.logAsync(c, NewEvent(c, resourceType, resourceID, action, status, metadata))
}

// LogError records a failed action asynchronously.
func (l *Logger) LogError(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, err error) {
	event := NewEvent(c, resourceType, resourceID, action, StatusFailure, map[string]any{"error": err.Error()})
	event.ErrorMessage = err.Error()
	l.logAsync(c, event)
}

func (l *Logger) logAsync(c echo.Context, event *Event) {
	out := c.Logger().Output()

	ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
	go func() {
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			fmt.Fprintf(out, errFailedWriteFmt, err)
		}
	}()
}

type QueryFilter struct {
	ActorID      *uuid.UUID
	ResourceType *ResourceType
	ResourceID   *uuid.UUID
	Action       *Action
	StartTime    *time.Time
	Limit        int
}

// Query returns matching events, newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	query := `
		SELECT id, event_type, actor_type, actor_id, resource_type, resource_id,
		       action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		FROM audit_events
		WHERE 1=1
	`
	args := []any{}
	argCount := 1

	if filter.ActorID != nil {
		query += fmt.Sprintf(" AND actor_id = $%d", argCount)
		args = append(args, *filter.ActorID)
		argCount++
	}

	if filter.ResourceType != nil {
		query += fmt.Sprintf(" AND resource_type = $%d", argCount)
		args = append(args, *filter.ResourceType)
		argCount++
	}

	if filter.ResourceID != nil {
		query += fmt.Sprintf(" AND resource_id = $%d", argCount)
		args = append(args, *filter.ResourceID)
		argCount++
	}

	if filter.Action != nil {
		query += fmt.Sprintf(" AND action = $%d", argCount)
		args = append(args, *filter.Action)
		argCount++
	}

	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *filter.StartTime)
		argCount++
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultQueryLimit {
		limit = defaultQueryLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argCount)
	args = append(args, limit)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		var metadataJSON []byte
		var ip, agent, requestID, errMsg *string

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.ActorType,
			&event.ActorID,
			&event.ResourceType,
			&event.ResourceID,
			&event.Action,
			&event.Status,
			&ip,
			&agent,
			&requestID,
			&metadataJSON,
			&errMsg,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		event.IPAddress = deref(ip)
		event.UserAgent = deref(agent)
		event.RequestID = deref(requestID)
		event.ErrorMessage = deref(errMsg)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
