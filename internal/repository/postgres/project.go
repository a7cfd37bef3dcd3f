package postgres

import (
	"context"
	"fmt"

	"mediaflow/internal/domain/project"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	projectColumns = "id, name, church_id, description, created_by_id, created_at, updated_at"

	projectStatsSelect = `
		SELECT p.id, p.name, p.church_id, p.description, p.created_by_id, p.created_at, p.updated_at,
		       c.name,
		       COUNT(m.id),
		       COUNT(m.id) FILTER (WHERE m.type = 'VISUAL'),
		       COUNT(m.id) FILTER (WHERE m.type = 'VIDEO'),
		       COUNT(m.id) FILTER (WHERE m.status IN ('DRAFT', 'PENDING', 'IN_REVIEW')),
		       COUNT(m.id) FILTER (WHERE m.status = 'FINAL_APPROVED')
		FROM projects p
		JOIN churches c ON c.id = p.church_id
		LEFT JOIN media m ON m.project_id = p.id
	`
	projectStatsGroupBy = " GROUP BY p.id, c.name"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row pgx.Row, p *project.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.ChurchID, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt)
}

func scanProjectWithStats(row pgx.Row, p *project.WithStats) error {
	return row.Scan(
		&p.ID, &p.Name, &p.ChurchID, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
		&p.ChurchName,
		&p.Stats.MediaCount, &p.Stats.VisualCount, &p.Stats.VideoCount, &p.Stats.PendingCount, &p.Stats.ApprovedCount,
	)
}

func (r *ProjectRepository) Create(ctx context.Context, input project.CreateProjectInput) (*project.Project, error) {
	query := `
		INSERT INTO projects (id, name, church_id, description, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns

	p := &project.Project{}
	err := scanProject(r.db.Pool.QueryRow(ctx, query, uuid.New(), input.Name, input.ChurchID, input.Description, input.CreatedByID), p)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedCreateProject(err)
	}

	return p, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE id = $1"

	p := &project.Project{}
	if err := scanProject(r.db.Pool.QueryRow(ctx, query, id), p); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, errFailedGetProject(err)
	}

	return p, nil
}

// GetWithStats returns a project with its media counts. A non-nil ownerID
// restricts the lookup to projects that user created.
func (r *ProjectRepository) GetWithStats(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*project.WithStats, error) {
	query := projectStatsSelect + " WHERE p.id = $1"
	args := []interface{}{id}

	if ownerID != nil {
		query += " AND p.created_by_id = $2"
		args = append(args, *ownerID)
	}
	query += projectStatsGroupBy

	p := &project.WithStats{}
	if err := scanProjectWithStats(r.db.Pool.QueryRow(ctx, query, args...), p); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, errFailedGetProject(err)
	}

	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.WithStats, error) {
	query := projectStatsSelect + " WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filter.CreatedByID != nil {
		argCount++
		query += fmt.Sprintf(" AND p.created_by_id = $%d", argCount)
		args = append(args, *filter.CreatedByID)
	}

	if filter.ChurchID != nil {
		argCount++
		query += fmt.Sprintf(" AND p.church_id = $%d", argCount)
		args = append(args, *filter.ChurchID)
	}

	query += projectStatsGroupBy + " ORDER BY p.updated_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListProjects(err)
	}
	defer rows.Close()

	projects := []*project.WithStats{}
	for rows.Next() {
		p := &project.WithStats{}
		if err := scanProjectWithStats(rows, p); err != nil {
			return nil, errFailedScanProject(err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, input project.UpdateProjectInput) (*project.Project, error) {
	query := "UPDATE projects SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	if input.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *input.Name)
	}

	if input.ChurchID != nil {
		argCount++
		query += fmt.Sprintf(", church_id = $%d", argCount)
		args = append(args, *input.ChurchID)
	}

	if input.Description != nil {
		argCount++
		query += fmt.Sprintf(", description = $%d", argCount)
		args = append(args, *input.Description)
	}

	query += " WHERE id = $1 RETURNING " + projectColumns

	p := &project.Project{}
	if err := scanProject(r.db.Pool.QueryRow(ctx, query, args...), p); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedUpdateProject(err)
	}

	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteProject(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}
