package postgres

import (
	"context"
	"fmt"

	"mediaflow/internal/domain/church"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const churchColumns = "id, name, address, created_at, updated_at"

type ChurchRepository struct {
	db *DB
}

func NewChurchRepository(db *DB) *ChurchRepository {
	return &ChurchRepository{db: db}
}

func (r *ChurchRepository) Create(ctx context.Context, input church.CreateChurchInput) (*church.Church, error) {
	query := `
		INSERT INTO churches (id, name, address)
		VALUES ($1, $2, $3)
		RETURNING ` + churchColumns

	c := &church.Church{}
	err := r.db.Pool.QueryRow(ctx, query, uuid.New(), input.Name, input.Address).Scan(
		&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, errFailedCreateChurch(err)
	}

	return c, nil
}

func (r *ChurchRepository) GetByID(ctx context.Context, id uuid.UUID) (*church.Church, error) {
	query := "SELECT " + churchColumns + " FROM churches WHERE id = $1"

	c := &church.Church{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedGetChurch(err)
	}

	return c, nil
}

func (r *ChurchRepository) List(ctx context.Context) ([]*church.WithEventCount, error) {
	query := `
		SELECT c.id, c.name, c.address, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM events e WHERE e.church_id = c.id)
		FROM churches c
		ORDER BY c.name ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, errFailedListChurches(err)
	}
	defer rows.Close()

	churches := []*church.WithEventCount{}
	for rows.Next() {
		c := &church.WithEventCount{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt, &c.EventCount); err != nil {
			return nil, errFailedScanChurch(err)
		}
		churches = append(churches, c)
	}

	return churches, rows.Err()
}

func (r *ChurchRepository) Update(ctx context.Context, id uuid.UUID, input church.UpdateChurchInput) (*church.Church, error) {
	query := "UPDATE churches SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	if input.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *input.Name)
	}

	if input.Address != nil {
		argCount++
		query += fmt.Sprintf(", address = $%d", argCount)
		args = append(args, *input.Address)
	}

	query += " WHERE id = $1 RETURNING " + churchColumns

	c := &church.Church{}
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedUpdateChurch(err)
	}

	return c, nil
}

func (r *ChurchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM churches WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("church still has events or projects")
		}
		return errFailedDeleteChurch(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errChurchNotFound)
	}

	return nil
}
