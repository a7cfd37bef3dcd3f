package postgres

import (
	"context"

	"mediaflow/internal/domain/media"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const versionColumns = "id, media_id, version_number, original_key, thumbnail_key, notes, created_by_id, created_at"

func scanVersion(row pgx.Row, v *media.Version) error {
	return row.Scan(&v.ID, &v.MediaID, &v.VersionNumber, &v.OriginalKey, &v.ThumbnailKey, &v.Notes, &v.CreatedByID, &v.CreatedAt)
}

func insertVersion(ctx context.Context, q querier, mediaID uuid.UUID, number int, originalKey, thumbnailKey string, notes *string, createdByID uuid.UUID) (*media.Version, error) {
	query := `
		INSERT INTO media_versions (id, media_id, version_number, original_key, thumbnail_key, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + versionColumns

	v := &media.Version{}
	if err := scanVersion(q.QueryRow(ctx, query, uuid.New(), mediaID, number, originalKey, thumbnailKey, notes, createdByID), v); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("version already exists")
		}
		return nil, errFailedCreateVersion(err)
	}

	return v, nil
}

// AddVersion appends the next version of a media item and refreshes the
// item's file attributes. An item waiting on a revision goes back to
// IN_REVIEW.
func (r *MediaRepository) AddVersion(ctx context.Context, input media.CreateVersionInput) (*media.Version, *media.Media, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	var current media.Status
	if err := tx.QueryRow(ctx, "SELECT status FROM media WHERE id = $1 FOR UPDATE", input.MediaID).Scan(&current); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NotFound(errMediaNotFound)
		}
		return nil, nil, errFailedGetMedia(err)
	}

	var next int
	if err := tx.QueryRow(ctx, "SELECT COALESCE(MAX(version_number), 0) + 1 FROM media_versions WHERE media_id = $1", input.MediaID).Scan(&next); err != nil {
		return nil, nil, errFailedCreateVersion(err)
	}

	v, err := insertVersion(ctx, tx, input.MediaID, next, input.OriginalKey, input.ThumbnailKey, input.Notes, input.CreatedByID)
	if err != nil {
		return nil, nil, err
	}

	status := current
	if current == media.StatusRevisionRequested {
		status = media.StatusInReview
	}

	query := `
		UPDATE media
		SET size = $2, mime_type = $3, width = $4, height = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mediaColumns

	m := &media.Media{}
	if err := scanMedia(tx.QueryRow(ctx, query, input.MediaID, input.Size, input.MimeType, input.Width, input.Height, status), m); err != nil {
		return nil, nil, errFailedUpdateMedia(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, errFailedCommitTransaction(err)
	}

	return v, m, nil
}

func (r *MediaRepository) ListVersions(ctx context.Context, mediaID uuid.UUID) ([]*media.Version, error) {
	query := "SELECT " + versionColumns + " FROM media_versions WHERE media_id = $1 ORDER BY version_number DESC"

	rows, err := r.db.Pool.Query(ctx, query, mediaID)
	if err != nil {
		return nil, errFailedListVersions(err)
	}
	defer rows.Close()

	versions := []*media.Version{}
	for rows.Next() {
		v := &media.Version{}
		if err := scanVersion(rows, v); err != nil {
			return nil, errFailedScanVersion(err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}
