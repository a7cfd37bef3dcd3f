package handler

import (
	"context"
	"io"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/church"
	"mediaflow/internal/domain/comment"
	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/project"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/review"
	"mediaflow/internal/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers.
// Each interface contains only the methods its handler calls.

type ChurchRepository interface {
	Create(ctx context.Context, input church.CreateChurchInput) (*church.Church, error)
	GetByID(ctx context.Context, id uuid.UUID) (*church.Church, error)
	List(ctx context.Context) ([]*church.WithEventCount, error)
	Update(ctx context.Context, id uuid.UUID, input church.UpdateChurchInput) (*church.Church, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]*user.WithEventCount, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
}

type EventRepository interface {
	Create(ctx context.Context, input event.CreateEventInput) (*event.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error)
	GetWithStats(ctx context.Context, id uuid.UUID) (*event.WithStats, error)
	List(ctx context.Context, filter event.ListFilter) ([]*event.WithStats, error)
	Update(ctx context.Context, id uuid.UUID, input event.UpdateEventInput) (*event.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventReviewMarker is used by uploads to open the review of a DRAFT event.
type EventReviewMarker interface {
	MarkPendingReview(ctx context.Context, id uuid.UUID) error
}

type ProjectRepository interface {
	Create(ctx context.Context, input project.CreateProjectInput) (*project.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	GetWithStats(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*project.WithStats, error)
	List(ctx context.Context, filter project.ListFilter) ([]*project.WithStats, error)
	Update(ctx context.Context, id uuid.UUID, input project.UpdateProjectInput) (*project.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MediaRepository interface {
	Create(ctx context.Context, input media.CreateMediaInput) (*media.Media, error)
	GetWithOwner(ctx context.Context, id uuid.UUID) (*media.WithOwner, error)
	List(ctx context.Context, filter media.ListFilter) ([]*media.WithLatestVersion, error)
	AddVersion(ctx context.Context, input media.CreateVersionInput) (*media.Version, *media.Media, error)
	ListVersions(ctx context.Context, mediaID uuid.UUID) ([]*media.Version, error)
}

// StorageKeyLister collects the object keys of a resource before its rows
// are deleted.
type StorageKeyLister interface {
	StorageKeysByEvent(ctx context.Context, eventID uuid.UUID) ([]string, error)
	StorageKeysByProject(ctx context.Context, projectID uuid.UUID) ([]string, error)
}

type CommentRepository interface {
	Create(ctx context.Context, input comment.CreateInput) (*comment.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*comment.Comment, error)
	ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]*comment.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ShareTokenRepository interface {
	Create(ctx context.Context, rec sharetoken.NewRecord) (*sharetoken.ShareToken, error)
	ListByScope(ctx context.Context, scope sharetoken.Scope) ([]*sharetoken.ShareToken, error)
}

type Transitioner interface {
	Transition(ctx context.Context, actor access.Actor, mediaID uuid.UUID, req review.Request) (media.Projection, error)
}

type ObjectWriter interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	DeleteMany(ctx context.Context, keys []string) error
}

type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type URLSigner interface {
	URL(ctx context.Context, key string) (string, error)
	URLWithTTL(ctx context.Context, key string, ttl time.Duration) (string, error)
	BatchURLs(ctx context.Context, keys []string, maxWorkers int) (map[string]string, []storage.BatchResult)
}

type AuditLogger interface {
	LogFromContext(c echo.Context, resourceType audit.ResourceType, resourceID *uuid.UUID, action audit.Action, status audit.Status, metadata map[string]any)
	LogError(c echo.Context, resourceType audit.ResourceType, resourceID *uuid.UUID, action audit.Action, err error)
}

type AuditQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}

type CSRFTokenIssuer interface {
	GetOrCreateToken(userID uuid.UUID) (string, error)
}
