package handler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"mediaflow/internal/audit"
	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/sharetoken"
	apperrors "mediaflow/pkg/errors"
	"mediaflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/labstack/echo/v4"
)

const zipExt = ".zip"

type DownloadHandler struct {
	events      EventRepository
	media       MediaRepository
	signer      URLSigner
	objects     ObjectReader
	auditLogger AuditLogger
}

func NewDownloadHandler(events EventRepository, mediaRepo MediaRepository, signer URLSigner, objects ObjectReader, auditLogger AuditLogger) *DownloadHandler {
	return &DownloadHandler{
		events:      events,
		media:       mediaRepo,
		signer:      signer,
		objects:     objects,
		auditLogger: auditLogger,
	}
}

type GalleryView struct {
	Event  *event.Event `json:"event"`
	Photos []MediaView  `json:"photos"`
}

type DownloadLink struct {
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	ExpiresIn int    `json:"expiresIn"`
}

// eventToken returns the request's share token and the event it is scoped
// to. Project tokens have no photo gallery.
func eventToken(c echo.Context) (*sharetoken.ShareToken, uuid.UUID, error) {
	tok, err := shareToken(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if tok.EventID == nil {
		return nil, uuid.Nil, apperrors.InvalidTokenType(msgProjectTokenNoDownload)
	}
	return tok, *tok.EventID, nil
}

func (h *DownloadHandler) approvedPhotos(ctx context.Context, eventID uuid.UUID) ([]*media.WithLatestVersion, error) {
	approved := media.StatusApproved
	return h.media.List(ctx, media.ListFilter{EventID: &eventID, Status: &approved})
}

// GetGallery lists the approved photos of the token's event.
func (h *DownloadHandler) GetGallery(c echo.Context) error {
	_, eventID, err := eventToken(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	e, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	photos, err := h.approvedPhotos(ctx, eventID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GalleryView{Event: e, Photos: signedViews(ctx, c, h.signer, photos)})
}

// GetPhotoLink signs a short-lived link to one original. MEDIA tokens only
// reach approved photos; VALIDATOR tokens reach every photo of the event.
func (h *DownloadHandler) GetPhotoLink(c echo.Context) error {
	tok, eventID, err := eventToken(c)
	if err != nil {
		return err
	}

	photoID, err := parseUUIDParam(c, paramPhotoID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	m, err := h.media.GetWithOwner(ctx, photoID)
	if err != nil {
		return err
	}
	if m.EventID == nil || *m.EventID != eventID || m.Type != media.TypePhoto {
		return apperrors.NotFound(msgPhotoNotFound)
	}
	if tok.Type == sharetoken.TypeMedia && m.Status != media.StatusApproved {
		return apperrors.NotApproved(msgNotApproved)
	}

	versions, err := h.media.ListVersions(ctx, photoID)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return apperrors.NotFound(msgPhotoNotFound)
	}

	url, err := h.signer.URLWithTTL(ctx, versions[0].OriginalKey, downloadURLTTL)
	if err != nil {
		return apperrors.InternalServer(msgFailedSignURL, err)
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeMedia, &photoID, audit.ActionDownload, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, DownloadLink{
		URL:       url,
		Filename:  downloadName(m.Filename, versions[0].OriginalKey),
		ExpiresIn: int(downloadURLTTL.Seconds()),
	})
}

// DownloadZip streams every approved original of the event as one archive.
// Once streaming starts the status is committed, so an object that cannot
// be read is skipped and logged rather than failing the archive.
func (h *DownloadHandler) DownloadZip(c echo.Context) error {
	_, eventID, err := eventToken(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	e, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	photos, err := h.approvedPhotos(ctx, eventID)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return apperrors.NoPhotos(msgNoApprovedPhotos)
	}

	archiveName := zipFilenameFallback + zipExt
	if strings.TrimSpace(e.Name) != "" {
		archiveName = strings.TrimSuffix(validator.SafeFileName(e.Name), zipExt) + zipExt
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, zipContentType)
	res.Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": archiveName}))
	res.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(res)
	names := make(map[string]int, len(photos))
	written := 0

	for _, photo := range photos {
		if err := h.addToArchive(ctx, zw, names, photo); err != nil {
			c.Logger().Warn("zip_entry_skipped", "media_id", photo.ID, "key", photo.Latest.OriginalKey, "error", err.Error())
			continue
		}
		written++
	}

	if err := zw.Close(); err != nil {
		c.Logger().Error("zip_close_failed", "event_id", eventID, "error", err.Error())
	}

	h.auditLogger.LogFromContext(c, audit.ResourceTypeEvent, &eventID, audit.ActionDownload, audit.StatusSuccess, map[string]any{
		"photos":  written,
		"skipped": len(photos) - written,
	})

	return nil
}

func (h *DownloadHandler) addToArchive(ctx context.Context, zw *zip.Writer, names map[string]int, photo *media.WithLatestVersion) error {
	body, err := h.objects.Get(ctx, photo.Latest.OriginalKey)
	if err != nil {
		return err
	}
	defer body.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     uniqueEntryName(names, downloadName(photo.Filename, photo.Latest.OriginalKey)),
		Method:   zip.Store,
		Modified: photo.CreatedAt,
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(w, body)
	return err
}

// downloadName is the uploaded filename with the extension of the stored
// object, which differs when the upload was re-encoded.
func downloadName(filename, key string) string {
	name := validator.SafeFileName(filename)
	ext := path.Ext(key)
	if ext == "" || strings.EqualFold(path.Ext(name), ext) {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}

// uniqueEntryName numbers repeated names: a.jpg, a (2).jpg, a (3).jpg.
func uniqueEntryName(names map[string]int, name string) string {
	names[name]++
	n := names[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	if _, taken := names[candidate]; taken {
		return uniqueEntryName(names, candidate)
	}
	names[candidate] = 1
	return candidate
}
