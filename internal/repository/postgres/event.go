package postgres

import (
	"context"
	"fmt"

	"mediaflow/internal/domain/event"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	eventColumns = "id, name, date, church_id, description, status, created_by_id, created_at, updated_at"

	eventStatsSelect = `
		SELECT e.id, e.name, e.date, e.church_id, e.description, e.status, e.created_by_id, e.created_at, e.updated_at,
		       c.name,
		       COUNT(m.id),
		       COUNT(m.id) FILTER (WHERE m.status = 'APPROVED'),
		       COUNT(m.id) FILTER (WHERE m.status = 'REJECTED'),
		       COUNT(m.id) FILTER (WHERE m.status = 'PENDING')
		FROM events e
		JOIN churches c ON c.id = e.church_id
		LEFT JOIN media m ON m.event_id = e.id
	`
	eventStatsGroupBy = " GROUP BY e.id, c.name"
)

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row, e *event.Event) error {
	return row.Scan(&e.ID, &e.Name, &e.Date, &e.ChurchID, &e.Description, &e.Status, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt)
}

func scanEventWithStats(row pgx.Row, e *event.WithStats) error {
	return row.Scan(
		&e.ID, &e.Name, &e.Date, &e.ChurchID, &e.Description, &e.Status, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
		&e.ChurchName,
		&e.Stats.PhotoCount, &e.Stats.ApprovedCount, &e.Stats.RejectedCount, &e.Stats.PendingCount,
	)
}

func (r *EventRepository) Create(ctx context.Context, input event.CreateEventInput) (*event.Event, error) {
	query := `
		INSERT INTO events (id, name, date, church_id, description, status, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + eventColumns

	e := &event.Event{}
	err := scanEvent(r.db.Pool.QueryRow(ctx, query,
		uuid.New(), input.Name, input.Date, input.ChurchID, input.Description, event.StatusDraft, input.CreatedByID,
	), e)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedCreateEvent(err)
	}

	return e, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = $1"

	e := &event.Event{}
	if err := scanEvent(r.db.Pool.QueryRow(ctx, query, id), e); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errEventNotFound)
		}
		return nil, errFailedGetEvent(err)
	}

	return e, nil
}

func (r *EventRepository) GetWithStats(ctx context.Context, id uuid.UUID) (*event.WithStats, error) {
	query := eventStatsSelect + " WHERE e.id = $1" + eventStatsGroupBy

	e := &event.WithStats{}
	if err := scanEventWithStats(r.db.Pool.QueryRow(ctx, query, id), e); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errEventNotFound)
		}
		return nil, errFailedGetEvent(err)
	}

	return e, nil
}

func (r *EventRepository) List(ctx context.Context, filter event.ListFilter) ([]*event.WithStats, error) {
	query := eventStatsSelect + " WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if filter.CreatedByID != nil {
		argCount++
		query += fmt.Sprintf(" AND e.created_by_id = $%d", argCount)
		args = append(args, *filter.CreatedByID)
	}

	if filter.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND e.status = $%d", argCount)
		args = append(args, *filter.Status)
	}

	if filter.ChurchID != nil {
		argCount++
		query += fmt.Sprintf(" AND e.church_id = $%d", argCount)
		args = append(args, *filter.ChurchID)
	}

	query += eventStatsGroupBy + " ORDER BY e.date DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListEvents(err)
	}
	defer rows.Close()

	events := []*event.WithStats{}
	for rows.Next() {
		e := &event.WithStats{}
		if err := scanEventWithStats(rows, e); err != nil {
			return nil, errFailedScanEvent(err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, input event.UpdateEventInput) (*event.Event, error) {
	query := "UPDATE events SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	if input.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *input.Name)
	}

	if input.Date != nil {
		argCount++
		query += fmt.Sprintf(", date = $%d", argCount)
		args = append(args, *input.Date)
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

	if input.Status != nil {
		argCount++
		query += fmt.Sprintf(", status = $%d", argCount)
		args = append(args, *input.Status)
	}

	query += " WHERE id = $1 RETURNING " + eventColumns

	e := &event.Event{}
	if err := scanEvent(r.db.Pool.QueryRow(ctx, query, args...), e); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errEventNotFound)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errChurchNotFound)
		}
		return nil, errFailedUpdateEvent(err)
	}

	return e, nil
}

// MarkPendingReview moves a DRAFT event into review. Events in any other
// status are left alone.
func (r *EventRepository) MarkPendingReview(ctx context.Context, id uuid.UUID) error {
	query := "UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3"
	if _, err := r.db.Pool.Exec(ctx, query, id, event.StatusPendingReview, event.StatusDraft); err != nil {
		return errFailedUpdateEvent(err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteEvent(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errEventNotFound)
	}

	return nil
}

// markEventReviewed closes the review of an event once none of its photos
// is still pending.
func markEventReviewed(ctx context.Context, q querier, eventID uuid.UUID) error {
	query := `
		UPDATE events SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		  AND NOT EXISTS (SELECT 1 FROM media WHERE event_id = $1 AND status = 'PENDING')
	`
	if _, err := q.Exec(ctx, query, eventID, event.StatusReviewed, event.StatusPendingReview); err != nil {
		return errFailedUpdateEvent(err)
	}
	return nil
}
