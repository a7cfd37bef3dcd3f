package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"mediaflow/internal/audit"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/imaging"
	"mediaflow/internal/storage"
	apperrors "mediaflow/pkg/errors"
	"mediaflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const formFilesArray = "files[]"

type UploadHandler struct {
	media        MediaRepository
	events       EventRepository
	reviewMarker EventReviewMarker
	projects     ProjectRepository
	uploader     objectUploader
	auditLogger  AuditLogger
}

func NewUploadHandler(
	mediaRepo MediaRepository,
	events EventRepository,
	reviewMarker EventReviewMarker,
	projects ProjectRepository,
	objects ObjectWriter,
	maxUploadSize int64,
	auditLogger AuditLogger,
) *UploadHandler {
	return &UploadHandler{
		media:        mediaRepo,
		events:       events,
		reviewMarker: reviewMarker,
		projects:     projects,
		uploader:     objectUploader{objects: objects, maxUploadSize: maxUploadSize},
		auditLogger:  auditLogger,
	}
}

// FileError reports why one file of a batch was not stored.
type FileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type UploadResponse struct {
	Uploaded []*media.Media `json:"uploaded"`
	Errors   []FileError    `json:"errors"`
}

// objectUploader validates, processes and writes uploaded files.
type objectUploader struct {
	objects       ObjectWriter
	maxUploadSize int64
}

// storedObject is one upload after processing, with the keys it was
// written under.
type storedObject struct {
	processed    *imaging.Processed
	originalKey  string
	thumbnailKey string
}

// keyFunc names the original object for a processed file's extension.
type keyFunc func(ext string) string

func uploadedFiles(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.MissingFiles(msgNoFilesProvided)
	}
	files := form.File[formFiles]
	files = append(files, form.File[formFilesArray]...)
	if len(files) == 0 {
		return nil, apperrors.MissingFiles(msgNoFilesProvided)
	}
	return files, nil
}

// readUpload reads at most one byte past the limit so oversized files are
// rejected without buffering them whole.
func (u objectUploader) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msgFailedReadFile, err)
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, u.maxUploadSize+1))
}

// store validates and processes data, then writes the original and, when
// one could be rendered, the thumbnail. keepOriginal stores the uploaded
// bytes instead of the re-encoded JPEG.
func (u objectUploader) store(ctx context.Context, data []byte, allowed []string, keepOriginal bool, originalKey keyFunc, thumbnailKey string) (*storedObject, error) {
	contentType, err := imaging.Validate(data, u.maxUploadSize, allowed)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	processed, err := imaging.Process(data, contentType)
	if err != nil {
		return nil, err
	}
	if keepOriginal {
		processed.Original = data
		processed.OriginalContentType = contentType
		processed.OriginalExt = imaging.Extension(contentType)
	}

	obj := &storedObject{
		processed:    processed,
		originalKey:  originalKey(processed.OriginalExt),
		thumbnailKey: thumbnailKey,
	}

	if err := u.objects.Put(ctx, obj.originalKey, bytes.NewReader(processed.Original), int64(len(processed.Original)), processed.OriginalContentType); err != nil {
		return nil, fmt.Errorf("%s: %w", msgFailedStoreFile, err)
	}

	if processed.Thumbnail == nil {
		obj.thumbnailKey = obj.originalKey
		return obj, nil
	}

	if err := u.objects.Put(ctx, obj.thumbnailKey, bytes.NewReader(processed.Thumbnail), int64(len(processed.Thumbnail)), imaging.JPEGContentType); err != nil {
		u.discard(ctx, obj)
		return nil, fmt.Errorf("%s: %w", msgFailedStoreFile, err)
	}

	return obj, nil
}

// discard removes the objects of an upload whose row could not be written.
func (u objectUploader) discard(ctx context.Context, obj *storedObject) {
	v := media.Version{OriginalKey: obj.originalKey, ThumbnailKey: obj.thumbnailKey}
	_ = u.objects.DeleteMany(ctx, v.StorageKeys())
}

// publicUploadError keeps storage and database details out of responses.
func publicUploadError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return appErr.Message
	}
	return msgFailedStoreFile
}

// UploadPhotos stores each file of the batch as a PENDING photo of the
// event. Failures are collected per file; the first success opens the
// event's review.
func (h *UploadHandler) UploadPhotos(c echo.Context) error {
	actor, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	rawEventID := c.FormValue(formEventID)
	if rawEventID == "" {
		return apperrors.MissingParam(msgEventIDRequired)
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return apperrors.BadRequest(msgInvalidID)
	}

	files, err := uploadedFiles(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := ownedEvent(ctx, h.events, actor, eventID); err != nil {
		return err
	}

	resp := UploadResponse{Uploaded: []*media.Media{}, Errors: []FileError{}}

	for _, fh := range files {
		filename := validator.SafeFileName(fh.Filename)

		m, err := h.uploadPhoto(ctx, fh, eventID, u.ID, filename)
		if err != nil {
			c.Logger().Warn("photo_upload_failed", "event_id", eventID, "filename", filename, "error", err.Error())
			resp.Errors = append(resp.Errors, FileError{Filename: filename, Error: publicUploadError(err)})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, m)
	}

	if len(resp.Uploaded) == 0 {
		h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &eventID, audit.ActionUpload, audit.StatusFailure, map[string]any{
			"failed": len(resp.Errors),
		})
		return c.JSON(http.StatusOK, resp)
	}

	if err := h.reviewMarker.MarkPendingReview(ctx, eventID); err != nil {
		c.Logger().Warn("mark_pending_review_failed", "event_id", eventID, "error", err.Error())
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &eventID, audit.ActionUpload, audit.StatusSuccess, map[string]any{
		"uploaded": len(resp.Uploaded),
		"failed":   len(resp.Errors),
	})

	return c.JSON(http.StatusCreated, resp)
}

func (h *UploadHandler) uploadPhoto(ctx context.Context, fh *multipart.FileHeader, eventID, userID uuid.UUID, filename string) (*media.Media, error) {
	data, err := h.uploader.readUpload(fh)
	if err != nil {
		return nil, err
	}

	mediaID := uuid.New()
	obj, err := h.uploader.store(ctx, data, media.PhotoMimeTypes, false,
		func(ext string) string { return storage.EventOriginalKey(eventID, mediaID, ext) },
		storage.EventThumbnailKey(eventID, mediaID),
	)
	if err != nil {
		return nil, err
	}

	m, err := h.media.Create(ctx, media.CreateMediaInput{
		ID:           mediaID,
		Type:         media.TypePhoto,
		Filename:     filename,
		MimeType:     obj.processed.OriginalContentType,
		Size:         int64(len(obj.processed.Original)),
		Width:        obj.processed.Width,
		Height:       obj.processed.Height,
		EventID:      &eventID,
		OriginalKey:  obj.originalKey,
		ThumbnailKey: obj.thumbnailKey,
		CreatedByID:  userID,
	})
	if err != nil {
		h.uploader.discard(ctx, obj)
		return nil, err
	}

	return m, nil
}

// UploadProjectMedia stores each file as a DRAFT item of the project.
// Originals are kept byte for byte; raster formats also get a thumbnail.
func (h *UploadHandler) UploadProjectMedia(c echo.Context) error {
	actor, u, err := sessionActor(c)
	if err != nil {
		return err
	}

	projectID, err := parseUUIDParam(c, paramID)
	if err != nil {
		return err
	}

	mediaType := media.Type(c.FormValue(formType))
	if !mediaType.IsProjectMedia() {
		return apperrors.Validation(msgInvalidMediaType)
	}

	files, err := uploadedFiles(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := ownedProject(ctx, h.projects, actor, projectID); err != nil {
		return err
	}

	resp := UploadResponse{Uploaded: []*media.Media{}, Errors: []FileError{}}

	for _, fh := range files {
		filename := validator.SafeFileName(fh.Filename)

		m, err := h.uploadProjectItem(ctx, fh, projectID, mediaType, u.ID, filename)
		if err != nil {
			c.Logger().Warn("project_upload_failed", "project_id", projectID, "filename", filename, "error", err.Error())
			resp.Errors = append(resp.Errors, FileError{Filename: filename, Error: publicUploadError(err)})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, m)
	}

	status := http.StatusOK
	auditStatus := audit.StatusFailure
	if len(resp.Uploaded) > 0 {
		status = http.StatusCreated
		auditStatus = audit.StatusSuccess
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeProject, &projectID, audit.ActionUpload, auditStatus, map[string]any{
		"type":     mediaType,
		"uploaded": len(resp.Uploaded),
		"failed":   len(resp.Errors),
	})

	return c.JSON(status, resp)
}

func (h *UploadHandler) uploadProjectItem(ctx context.Context, fh *multipart.FileHeader, projectID uuid.UUID, mediaType media.Type, userID uuid.UUID, filename string) (*media.Media, error) {
	data, err := h.uploader.readUpload(fh)
	if err != nil {
		return nil, err
	}

	mediaID, revision := uuid.New(), uuid.New()
	obj, err := h.uploader.store(ctx, data, media.AllowedMimeTypes(mediaType), true,
		func(ext string) string { return storage.ProjectOriginalKey(projectID, mediaID, revision, ext) },
		storage.ProjectThumbnailKey(projectID, mediaID, revision),
	)
	if err != nil {
		return nil, err
	}

	m, err := h.media.Create(ctx, media.CreateMediaInput{
		ID:           mediaID,
		Type:         mediaType,
		Filename:     filename,
		MimeType:     obj.processed.OriginalContentType,
		Size:         int64(len(obj.processed.Original)),
		Width:        obj.processed.Width,
		Height:       obj.processed.Height,
		ProjectID:    &projectID,
		OriginalKey:  obj.originalKey,
		ThumbnailKey: obj.thumbnailKey,
		CreatedByID:  userID,
	})
	if err != nil {
		h.uploader.discard(ctx, obj)
		return nil, err
	}

	return m, nil
}
