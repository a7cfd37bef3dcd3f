package postgres

import (
	"context"
	"fmt"

	"mediaflow/internal/domain/media"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	mediaColumns = `id, type, status, filename, mime_type, size, width, height, duration,
		event_id, project_id, scheduled_deletion_at, validated_at, created_at, updated_at`

	mediaColumnsM = `m.id, m.type, m.status, m.filename, m.mime_type, m.size, m.width, m.height, m.duration,
		m.event_id, m.project_id, m.scheduled_deletion_at, m.validated_at, m.created_at, m.updated_at`
)

type MediaRepository struct {
	db *DB
}

func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func mediaFields(m *media.Media) []any {
	return []any{
		&m.ID, &m.Type, &m.Status, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.Duration,
		&m.EventID, &m.ProjectID, &m.ScheduledDeletionAt, &m.ValidatedAt, &m.CreatedAt, &m.UpdatedAt,
	}
}

func scanMedia(row pgx.Row, m *media.Media) error {
	return row.Scan(mediaFields(m)...)
}

// Create inserts a media item together with its first version.
func (r *MediaRepository) Create(ctx context.Context, input media.CreateMediaInput) (*media.Media, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO media (id, type, status, filename, mime_type, size, width, height, event_id, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + mediaColumns

	m := &media.Media{}
	err = scanMedia(tx.QueryRow(ctx, query,
		id, input.Type, media.InitialStatus(input.Type), input.Filename, input.MimeType, input.Size,
		input.Width, input.Height, input.EventID, input.ProjectID,
	), m)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errOwnerNotFound)
		}
		return nil, errFailedCreateMedia(err)
	}

	if _, err := insertVersion(ctx, tx, m.ID, 1, input.OriginalKey, input.ThumbnailKey, nil, input.CreatedByID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return m, nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	query := "SELECT " + mediaColumns + " FROM media WHERE id = $1"

	m := &media.Media{}
	if err := scanMedia(r.db.Pool.QueryRow(ctx, query, id), m); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errMediaNotFound)
		}
		return nil, errFailedGetMedia(err)
	}

	return m, nil
}

// GetWithOwner loads a media item with the creator of its event or project.
func (r *MediaRepository) GetWithOwner(ctx context.Context, id uuid.UUID) (*media.WithOwner, error) {
	query := `
		SELECT ` + mediaColumnsM + `, COALESCE(p.created_by_id, e.created_by_id)
		FROM media m
		LEFT JOIN projects p ON p.id = m.project_id
		LEFT JOIN events e ON e.id = m.event_id
		WHERE m.id = $1
	`

	m := &media.WithOwner{}
	fields := append(mediaFields(&m.Media), &m.Owner.CreatedByID)
	if err := r.db.Pool.QueryRow(ctx, query, id).Scan(fields...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errMediaNotFound)
		}
		return nil, errFailedGetMedia(err)
	}
	m.Owner.EventID = m.EventID
	m.Owner.ProjectID = m.ProjectID

	return m, nil
}

// List returns media matching filter, newest first, each with its latest
// version.
func (r *MediaRepository) List(ctx context.Context, filter media.ListFilter) ([]*media.WithLatestVersion, error) {
	query := `
		SELECT ` + mediaColumnsM + `,
		       v.id, v.media_id, v.version_number, v.original_key, v.thumbnail_key, v.notes, v.created_by_id, v.created_at
		FROM media m
		JOIN LATERAL (
			SELECT * FROM media_versions mv
			WHERE mv.media_id = m.id
			ORDER BY mv.version_number DESC
			LIMIT 1
		) v ON TRUE
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 0

	if filter.EventID != nil {
		argCount++
		query += fmt.Sprintf(" AND m.event_id = $%d", argCount)
		args = append(args, *filter.EventID)
	}

	if filter.ProjectID != nil {
		argCount++
		query += fmt.Sprintf(" AND m.project_id = $%d", argCount)
		args = append(args, *filter.ProjectID)
	}

	if filter.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND m.status = $%d", argCount)
		args = append(args, *filter.Status)
	}

	query += " ORDER BY m.created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListMedia(err)
	}
	defer rows.Close()

	items := []*media.WithLatestVersion{}
	for rows.Next() {
		item := &media.WithLatestVersion{}
		v := &item.Latest
		fields := append(mediaFields(&item.Media),
			&v.ID, &v.MediaID, &v.VersionNumber, &v.OriginalKey, &v.ThumbnailKey, &v.Notes, &v.CreatedByID, &v.CreatedAt,
		)
		if err := rows.Scan(fields...); err != nil {
			return nil, errFailedScanMedia(err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ApplyTransition writes a checked status change. The update only matches
// while the row still holds in.From, so a concurrent decision surfaces as
// STATUS_CHANGED instead of being overwritten. The optional comment and the
// event review roll-up commit with the status change or not at all.
func (r *MediaRepository) ApplyTransition(ctx context.Context, in media.TransitionInput) (*media.Media, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	query := "UPDATE media SET status = $3, updated_at = NOW()"
	if media.StampsValidation(in.To, in.Type) {
		query += ", validated_at = NOW()"
	}
	query += " WHERE id = $1 AND status = $2 RETURNING " + mediaColumns

	m := &media.Media{}
	if err := scanMedia(tx.QueryRow(ctx, query, in.MediaID, in.From, in.To), m); err != nil {
		if err != pgx.ErrNoRows {
			return nil, errFailedUpdateMediaStatus(err)
		}
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM media WHERE id = $1)", in.MediaID).Scan(&exists); err != nil {
			return nil, errFailedGetMedia(err)
		}
		if !exists {
			return nil, apperrors.NotFound(errMediaNotFound)
		}
		return nil, apperrors.StatusChanged()
	}

	if in.Comment != nil {
		if _, err := insertComment(ctx, tx, *in.Comment); err != nil {
			return nil, err
		}
	}

	if m.Type == media.TypePhoto && m.EventID != nil {
		if err := markEventReviewed(ctx, tx, *m.EventID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return m, nil
}

// StorageKeysByEvent lists every object key referenced by an event's media.
func (r *MediaRepository) StorageKeysByEvent(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	return r.storageKeys(ctx, "m.event_id = $1", eventID)
}

// StorageKeysByProject lists every object key referenced by a project's
// media.
func (r *MediaRepository) StorageKeysByProject(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	return r.storageKeys(ctx, "m.project_id = $1", projectID)
}

func (r *MediaRepository) storageKeys(ctx context.Context, where string, id uuid.UUID) ([]string, error) {
	query := `
		SELECT v.original_key, v.thumbnail_key
		FROM media_versions v
		JOIN media m ON m.id = v.media_id
		WHERE ` + where

	rows, err := r.db.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, errFailedListStorageKeys(err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		v := media.Version{}
		if err := rows.Scan(&v.OriginalKey, &v.ThumbnailKey); err != nil {
			return nil, errFailedListStorageKeys(err)
		}
		keys = append(keys, v.StorageKeys()...)
	}

	return keys, rows.Err()
}
