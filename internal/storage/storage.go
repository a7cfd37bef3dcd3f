// Package storage defines the object store used for media originals and
// thumbnails, and the key layout objects are written under.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	eventsPrefix   = "events"
	projectsPrefix = "projects"
	originalName   = "original"
	thumbnailName  = "thumbnail.jpg"
	defaultExt     = "bin"
)

// ObjectStore is implemented by the S3 and MinIO clients.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// EventOriginalKey is events/{eventId}/{mediaId}/original.{ext}.
func EventOriginalKey(eventID, mediaID uuid.UUID, ext string) string {
	return path.Join(eventsPrefix, eventID.String(), mediaID.String(), originalName+"."+normalizeExt(ext))
}

// EventThumbnailKey is events/{eventId}/{mediaId}/thumbnail.jpg.
func EventThumbnailKey(eventID, mediaID uuid.UUID) string {
	return path.Join(eventsPrefix, eventID.String(), mediaID.String(), thumbnailName)
}

// ProjectOriginalKey places each version of a project item under its own
// revision directory so earlier versions stay readable.
func ProjectOriginalKey(projectID, mediaID, revision uuid.UUID, ext string) string {
	return path.Join(projectsPrefix, projectID.String(), mediaID.String(), revision.String(), originalName+"."+normalizeExt(ext))
}

func ProjectThumbnailKey(projectID, mediaID, revision uuid.UUID) string {
	return path.Join(projectsPrefix, projectID.String(), mediaID.String(), revision.String(), thumbnailName)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return defaultExt
	}
	return ext
}
