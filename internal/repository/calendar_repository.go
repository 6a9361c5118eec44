package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

const calendarColumns = `id, school_id, event_type, name, start_date, end_date, no_nil_activity, academic_year, semester, created_by, created_at, updated_at`

// CalendarRepository persists academic calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create inserts an academic event with generated defaults.
func (r *CalendarRepository) Create(ctx context.Context, event *models.AcademicEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO academic_calendars (id, school_id, event_type, name, start_date, end_date, no_nil_activity, academic_year, semester, created_by, created_at, updated_at)
VALUES (:id, :school_id, :event_type, :name, :start_date, :end_date, :no_nil_activity, :academic_year, :semester, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create academic event: %w", err)
	}
	return nil
}

// GetByID returns one academic event.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.AcademicEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_calendars WHERE id = $1", calendarColumns)
	var event models.AcademicEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Update rewrites the mutable columns of an event.
func (r *CalendarRepository) Update(ctx context.Context, event *models.AcademicEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_calendars
SET event_type = :event_type, name = :name, start_date = :start_date, end_date = :end_date,
    no_nil_activity = :no_nil_activity, academic_year = :academic_year, semester = :semester, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update academic event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update academic event rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("academic event %s not found", event.ID)
	}
	return nil
}

// Delete removes an event and reports whether a row was deleted.
func (r *CalendarRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM academic_calendars WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete academic event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete academic event rows: %w", err)
	}
	return affected > 0, nil
}

// List returns events matching the filter plus the total count for pagination.
func (r *CalendarRepository) List(ctx context.Context, filter models.CalendarFilter) ([]models.AcademicEvent, int, error) {
	where := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if len(filter.EventTypes) > 0 {
		types := make([]string, len(filter.EventTypes))
		for i, t := range filter.EventTypes {
			types[i] = string(t)
		}
		where = append(where, fmt.Sprintf("event_type = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(types))
	}
	clause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM academic_calendars WHERE %s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic events: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query := fmt.Sprintf("SELECT %s FROM academic_calendars WHERE %s ORDER BY start_date ASC LIMIT %d OFFSET %d",
		calendarColumns, clause, pageSize, (page-1)*pageSize)
	var events []models.AcademicEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic events: %w", err)
	}
	return events, total, nil
}
