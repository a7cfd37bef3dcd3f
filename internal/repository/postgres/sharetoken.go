package postgres

import (
	"context"
	"time"

	"mediaflow/internal/domain/sharetoken"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const shareTokenColumns = "id, token, type, label, expires_at, last_used_at, usage_count, event_id, project_id, created_at"

type ShareTokenRepository struct {
	db *DB
}

func NewShareTokenRepository(db *DB) *ShareTokenRepository {
	return &ShareTokenRepository{db: db}
}

func scanShareToken(row pgx.Row, t *sharetoken.ShareToken) error {
	return row.Scan(&t.ID, &t.Token, &t.Type, &t.Label, &t.ExpiresAt, &t.LastUsedAt, &t.UsageCount, &t.EventID, &t.ProjectID, &t.CreatedAt)
}

func (r *ShareTokenRepository) Create(ctx context.Context, rec sharetoken.NewRecord) (*sharetoken.ShareToken, error) {
	query := `
		INSERT INTO share_tokens (id, token, type, label, expires_at, event_id, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shareTokenColumns

	t := &sharetoken.ShareToken{}
	err := scanShareToken(r.db.Pool.QueryRow(ctx, query,
		uuid.New(), rec.Token, rec.Type, rec.Label, rec.ExpiresAt, rec.EventID, rec.ProjectID,
	), t)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("share token already exists")
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errOwnerNotFound)
		}
		return nil, errFailedCreateShareToken(err)
	}

	return t, nil
}

func (r *ShareTokenRepository) GetByToken(ctx context.Context, token string) (*sharetoken.ShareToken, error) {
	query := "SELECT " + shareTokenColumns + " FROM share_tokens WHERE token = $1"

	t := &sharetoken.ShareToken{}
	if err := scanShareToken(r.db.Pool.QueryRow(ctx, query, token), t); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errShareTokenNotFound)
		}
		return nil, errFailedGetShareToken(err)
	}

	return t, nil
}

// RecordUsage counts one use of a token in a single statement. last_used_at
// only ever moves forward, whatever order concurrent requests commit in.
func (r *ShareTokenRepository) RecordUsage(ctx context.Context, id uuid.UUID, at time.Time) (*sharetoken.ShareToken, error) {
	query := `
		UPDATE share_tokens
		SET usage_count = usage_count + 1,
		    last_used_at = GREATEST(COALESCE(last_used_at, $2), $2)
		WHERE id = $1
		RETURNING ` + shareTokenColumns

	t := &sharetoken.ShareToken{}
	if err := scanShareToken(r.db.Pool.QueryRow(ctx, query, id, at), t); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errShareTokenNotFound)
		}
		return nil, errFailedRecordTokenUsage(err)
	}

	return t, nil
}

// ListByScope returns the tokens of one event or project, newest first.
func (r *ShareTokenRepository) ListByScope(ctx context.Context, scope sharetoken.Scope) ([]*sharetoken.ShareToken, error) {
	query := "SELECT " + shareTokenColumns + " FROM share_tokens WHERE "
	var arg uuid.UUID
	if scope.EventID != nil {
		query += "event_id = $1"
		arg = *scope.EventID
	} else if scope.ProjectID != nil {
		query += "project_id = $1"
		arg = *scope.ProjectID
	} else {
		return nil, apperrors.Validation(sharetoken.ErrScopeRequired.Error())
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, errFailedListShareTokens(err)
	}
	defer rows.Close()

	tokens := []*sharetoken.ShareToken{}
	for rows.Next() {
		t := &sharetoken.ShareToken{}
		if err := scanShareToken(rows, t); err != nil {
			return nil, errFailedScanShareToken(err)
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}
