package handler

import (
	"context"
	"net/http"
	"unicode/utf8"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/comment"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/review"
	"mediaflow/internal/storage"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MediaHandler struct {
	media       MediaRepository
	comments    CommentRepository
	review      Transitioner
	uploader    objectUploader
	auditLogger AuditLogger
}

func NewMediaHandler(
	mediaRepo MediaRepository,
	comments CommentRepository,
	reviewer Transitioner,
	objects ObjectWriter,
	maxUploadSize int64,
	auditLogger AuditLogger,
) *MediaHandler {
	return &MediaHandler{
		media:       mediaRepo,
		comments:    comments,
		review:      reviewer,
		uploader:    objectUploader{objects: objects, maxUploadSize: maxUploadSize},
		auditLogger: auditLogger,
	}
}

type UpdateStatusRequest struct {
	Status  string  `json:"status" validate:"required"`
	Comment *string `json:"comment"`
}

type CreateCommentRequest struct {
	Content  string       `json:"content"`
	Type     comment.Type `json:"type"`
	Timecode *int         `json:"timecode"`
	ParentID *uuid.UUID   `json:"parentId"`
}

// VersionResponse is a freshly added version and the item it belongs to.
type VersionResponse struct {
	Version *media.Version   `json:"version"`
	Media   media.Projection `json:"media"`
}

// UpdateStatus runs one review decision through the state machine. The
// actor is a VALIDATOR token when ?token= is present, the session otherwise.
func (h *MediaHandler) UpdateStatus(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	to, err := media.ParseStatus(req.Status)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	projection, err := h.review.Transition(c.Request().Context(), actor, id, review.Request{
		Status:  to,
		Comment: req.Comment,
	})
	if err != nil {
		status := audit.StatusFailure
		if apperrors.HasCode(err, apperrors.CodeForbidden) {
			status = audit.StatusDenied
		}
		h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &id, audit.ActionTransition, status, map[string]any{
			"to":    to,
			"error": err.Error(),
		})
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &id, audit.ActionTransition, audit.StatusSuccess, map[string]any{
		"to": projection.Status,
	})

	return c.JSON(http.StatusOK, projection)
}

// RequireMedia answers 404 for unknown media before the share token or the
// session is checked.
func (h *MediaHandler) RequireMedia(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseUUIDParam(c, paramID)
		if err != nil {
			return err
		}
		if _, err := h.media.GetWithOwner(c.Request().Context(), id); err != nil {
			return err
		}
		return next(c)
	}
}

// reviewable loads a media item the actor may review or comment on.
func (h *MediaHandler) reviewable(ctx context.Context, actor access.Actor, id uuid.UUID) (*media.WithOwner, error) {
	m, err := h.media.GetWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := review.AuthorizeResource(actor, m.Owner); err != nil {
		return nil, err
	}
	return m, nil
}

func (h *MediaHandler) ListComments(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.reviewable(ctx, actor, id); err != nil {
		return err
	}

	comments, err := h.comments.ListByMedia(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comments)
}

func (h *MediaHandler) CreateComment(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	var req CreateCommentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	input := comment.CreateInput{
		MediaID:  id,
		Type:     req.Type,
		Content:  req.Content,
		Timecode: req.Timecode,
		ParentID: req.ParentID,
	}
	if tok, ok := actor.Token(); ok {
		name := tok.AuthorName()
		input.AuthorName = &name
	} else if u, ok := actor.User(); ok {
		authorID := u.ID
		input.AuthorID = &authorID
		input.AuthorName = u.DisplayName()
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.reviewable(ctx, actor, id); err != nil {
		return err
	}

	created, err := h.comments.Create(ctx, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// DeleteComment is open to the comment's author and to whoever owns the
// media's event or project.
func (h *MediaHandler) DeleteComment(c echo.Context) error {
	actor, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	mediaID, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}
	commentID, err := parseUUIDParam(c, paramCommentID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	cm, err := h.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if cm.MediaID != mediaID {
		return apperrors.NotFound(msgCommentNotFound)
	}

	m, err := h.media.GetWithOwner(ctx, mediaID)
	if err != nil {
		return err
	}

	isAuthor := cm.AuthorID != nil && *cm.AuthorID == u.ID
	if !isAuthor && !access.CanMutate(actor, m.Owner.CreatedByID) {
		h.auditLogger.LogFromContext(c, audit.ResourceTypeComment, &commentID, audit.ActionDelete, audit.StatusDenied, nil)
		return apperrors.Forbidden(msgNotAuthorizedComment)
	}

	if err := h.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeComment, &commentID, audit.ActionDelete, audit.StatusSuccess, map[string]any{
		"mediaId": mediaID,
	})

	return c.NoContent(http.StatusNoContent)
}

// AddVersion uploads a replacement file for a project item. The new version
// is stored under its own revision so earlier versions stay intact.
func (h *MediaHandler) AddVersion(c echo.Context) error {
	actor, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(formFile)
	if err != nil {
		return apperrors.MissingFiles(msgFileRequired)
	}

	notes := trimmedOrNil(stringPtr(c.FormValue(formNotes)))
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLength {
		return apperrors.Validation(msgNotesTooLong)
	}

	ctx := c.Request().Context()
	m, err := h.media.GetWithOwner(ctx, id)
	if err != nil {
		return err
	}
	if m.ProjectID == nil || !m.Type.IsProjectMedia() {
		return apperrors.Validation(msgInvalidMediaType)
	}
	if !access.CanMutate(actor, m.Owner.CreatedByID) {
		return apperrors.Forbidden(msgNotAuthorizedMedia)
	}

	data, err := h.uploader.readUpload(fh)
	if err != nil {
		return apperrors.InternalServer(msgFailedReadFile, err)
	}

	revision := uuid.New()
	projectID := *m.ProjectID
	obj, err := h.uploader.store(ctx, data, media.AllowedMimeTypes(m.Type), true,
		func(ext string) string { return storage.ProjectOriginalKey(projectID, m.ID, revision, ext) },
		storage.ProjectThumbnailKey(projectID, m.ID, revision),
	)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			return err
		}
		return apperrors.InternalServer(msgFailedStoreFile, err)
	}

	v, updated, err := h.media.AddVersion(ctx, media.CreateVersionInput{
		MediaID:      m.ID,
		OriginalKey:  obj.originalKey,
		ThumbnailKey: obj.thumbnailKey,
		Notes:        notes,
		CreatedByID:  u.ID,
		Size:         int64(len(obj.processed.Original)),
		MimeType:     obj.processed.OriginalContentType,
		Width:        obj.processed.Width,
		Height:       obj.processed.Height,
	})
	if err != nil {
		h.uploader.discard(ctx, obj)
		return err
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &m.ID, audit.ActionUpload, audit.StatusSuccess, map[string]any{
		"version": v.VersionNumber,
	})

	return c.JSON(http.StatusCreated, VersionResponse{Version: v, Media: updated.Projection()})
}

func stringPtr(s string) *string {
	return &s
}
