package postgres

import (
	"context"
	"fmt"

	"mediaflow/internal/domain/user"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = "id, email, name, image, role, status, created_at, updated_at"

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	query := `
		INSERT INTO users (id, email, name, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	u := &user.User{}
	err := scanUser(r.db.Pool.QueryRow(ctx, query, uuid.New(), input.Email, input.Name, input.Role, input.Status), u)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("user with this email already exists")
		}
		return nil, errFailedCreateUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	u := &user.User{}
	if err := scanUser(r.db.Pool.QueryRow(ctx, query, id), u); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1)"

	u := &user.User{}
	if err := scanUser(r.db.Pool.QueryRow(ctx, query, email), u); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]*user.WithEventCount, error) {
	query := `
		SELECT u.id, u.email, u.name, u.image, u.role, u.status, u.created_at, u.updated_at,
		       (SELECT COUNT(*) FROM events e WHERE e.created_by_id = u.id)
		FROM users u
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 0

	if filter.Role != nil {
		argCount++
		query += fmt.Sprintf(" AND u.role = $%d", argCount)
		args = append(args, *filter.Role)
	}

	if filter.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND u.status = $%d", argCount)
		args = append(args, *filter.Status)
	}

	query += " ORDER BY u.created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	defer rows.Close()

	users := []*user.WithEventCount{}
	for rows.Next() {
		u := &user.WithEventCount{}
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Image, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
			&u.EventCount,
		); err != nil {
			return nil, errFailedScanUser(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateUsers(err)
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	if input.Role != nil {
		argCount++
		query += fmt.Sprintf(", role = $%d", argCount)
		args = append(args, *input.Role)
	}

	if input.Status != nil {
		argCount++
		query += fmt.Sprintf(", status = $%d", argCount)
		args = append(args, *input.Status)
	}

	query += " WHERE id = $1 RETURNING " + userColumns

	u := &user.User{}
	if err := scanUser(r.db.Pool.QueryRow(ctx, query, args...), u); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedUpdateUser(err)
	}

	return u, nil
}
