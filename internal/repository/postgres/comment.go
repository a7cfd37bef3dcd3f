package postgres

import (
	"context"

	"mediaflow/internal/domain/comment"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const commentColumns = "id, media_id, type, content, timecode, author_id, author_name, parent_id, created_at, updated_at"

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(row pgx.Row, c *comment.Comment) error {
	return row.Scan(&c.ID, &c.MediaID, &c.Type, &c.Content, &c.Timecode, &c.AuthorID, &c.AuthorName, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
}

func insertComment(ctx context.Context, q querier, input comment.CreateInput) (*comment.Comment, error) {
	query := `
		INSERT INTO comments (id, media_id, type, content, timecode, author_id, author_name, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + commentColumns

	c := &comment.Comment{}
	err := scanComment(q.QueryRow(ctx, query,
		uuid.New(), input.MediaID, input.Type, input.Content, input.Timecode, input.AuthorID, input.AuthorName, input.ParentID,
	), c)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errMediaNotFound)
		}
		return nil, errFailedCreateComment(err)
	}

	return c, nil
}

func (r *CommentRepository) Create(ctx context.Context, input comment.CreateInput) (*comment.Comment, error) {
	return insertComment(ctx, r.db.Pool, input)
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*comment.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE id = $1"

	c := &comment.Comment{}
	if err := scanComment(r.db.Pool.QueryRow(ctx, query, id), c); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errCommentNotFound)
		}
		return nil, errFailedGetComment(err)
	}

	return c, nil
}

func (r *CommentRepository) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]*comment.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE media_id = $1 ORDER BY created_at ASC"

	rows, err := r.db.Pool.Query(ctx, query, mediaID)
	if err != nil {
		return nil, errFailedListComments(err)
	}
	defer rows.Close()

	comments := []*comment.Comment{}
	for rows.Next() {
		c := &comment.Comment{}
		if err := scanComment(rows, c); err != nil {
			return nil, errFailedScanComment(err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteComment(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errCommentNotFound)
	}

	return nil
}
