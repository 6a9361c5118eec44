package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

const availabilityColumns = `id, athlete_id, blocked_periods, study_hours, max_deals_per_month, no_finals_deals, no_midterms_deals, preferred_deal_days, min_notice_days, max_hours_per_week, notes, created_at, updated_at`

// AvailabilityRepository persists athlete availability preferences and wraps
// the calendar stored procedures.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// GetByAthlete returns the athlete's availability record.
func (r *AvailabilityRepository) GetByAthlete(ctx context.Context, athleteID string) (*models.AthleteAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM athlete_availability WHERE athlete_id = $1", availabilityColumns)
	var availability models.AthleteAvailability
	if err := r.db.GetContext(ctx, &availability, query, athleteID); err != nil {
		return nil, err
	}
	return &availability, nil
}

// Upsert creates or updates the single logical availability row per athlete.
func (r *AvailabilityRepository) Upsert(ctx context.Context, availability *models.AthleteAvailability) error {
	if availability.ID == "" {
		availability.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if availability.CreatedAt.IsZero() {
		availability.CreatedAt = now
	}
	availability.UpdatedAt = now
	if len(availability.BlockedPeriods) == 0 {
		availability.BlockedPeriods = []byte("[]")
	}

	const query = `INSERT INTO athlete_availability (id, athlete_id, blocked_periods, study_hours, max_deals_per_month, no_finals_deals, no_midterms_deals, preferred_deal_days, min_notice_days, max_hours_per_week, notes, created_at, updated_at)
VALUES (:id, :athlete_id, :blocked_periods, :study_hours, :max_deals_per_month, :no_finals_deals, :no_midterms_deals, :preferred_deal_days, :min_notice_days, :max_hours_per_week, :notes, :created_at, :updated_at)
ON CONFLICT (athlete_id) DO UPDATE
SET blocked_periods = EXCLUDED.blocked_periods,
    study_hours = EXCLUDED.study_hours,
    max_deals_per_month = EXCLUDED.max_deals_per_month,
    no_finals_deals = EXCLUDED.no_finals_deals,
    no_midterms_deals = EXCLUDED.no_midterms_deals,
    preferred_deal_days = EXCLUDED.preferred_deal_days,
    min_notice_days = EXCLUDED.min_notice_days,
    max_hours_per_week = EXCLUDED.max_hours_per_week,
    notes = EXCLUDED.notes,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, availability); err != nil {
		return fmt.Errorf("upsert athlete availability: %w", err)
	}
	return nil
}

// AppendBlockedPeriod appends one custom period to the jsonb array in a
// single server-side UPDATE, so concurrent editors cannot lose writes.
func (r *AvailabilityRepository) AppendBlockedPeriod(ctx context.Context, athleteID string, periodJSON []byte) (bool, error) {
	const query = `UPDATE athlete_availability
SET blocked_periods = COALESCE(blocked_periods, '[]'::jsonb) || $2::jsonb,
    updated_at = NOW()
WHERE athlete_id = $1`
	result, err := r.db.ExecContext(ctx, query, athleteID, periodJSON)
	if err != nil {
		return false, fmt.Errorf("append blocked period: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append blocked period rows: %w", err)
	}
	return affected > 0, nil
}

// RemoveBlockedPeriod filters one period out of the jsonb array atomically.
func (r *AvailabilityRepository) RemoveBlockedPeriod(ctx context.Context, athleteID, periodID string) (bool, error) {
	const query = `UPDATE athlete_availability
SET blocked_periods = COALESCE((
        SELECT jsonb_agg(elem)
        FROM jsonb_array_elements(blocked_periods) AS elem
        WHERE elem->>'id' <> $2
    ), '[]'::jsonb),
    updated_at = NOW()
WHERE athlete_id = $1`
	result, err := r.db.ExecContext(ctx, query, athleteID, periodID)
	if err != nil {
		return false, fmt.Errorf("remove blocked period: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove blocked period rows: %w", err)
	}
	return affected > 0, nil
}

// IsAthleteAvailable invokes the authoritative single-date predicate.
func (r *AvailabilityRepository) IsAthleteAvailable(ctx context.Context, athleteID string, date time.Time) (bool, error) {
	var available bool
	if err := r.db.GetContext(ctx, &available, "SELECT is_athlete_available($1, $2)", athleteID, date); err != nil {
		return false, fmt.Errorf("is athlete available: %w", err)
	}
	return available, nil
}

// GetBlockedPeriods invokes the merged blackout-window procedure, combining
// no-NIL academic events with the athlete's custom periods.
func (r *AvailabilityRepository) GetBlockedPeriods(ctx context.Context, athleteID string, start, end time.Time) ([]models.BlockedPeriod, error) {
	const query = `SELECT period_type, name, start_date, end_date, source FROM get_athlete_blocked_periods($1, $2, $3)`
	var periods []models.BlockedPeriod
	if err := r.db.SelectContext(ctx, &periods, query, athleteID, start, end); err != nil {
		return nil, fmt.Errorf("get blocked periods: %w", err)
	}
	return periods, nil
}

// SuggestDealTiming invokes the date-suggestion procedure. Order is not
// guaranteed by the procedure; callers sort by availability score.
func (r *AvailabilityRepository) SuggestDealTiming(ctx context.Context, athleteID string, withinDays int) ([]models.SuggestedDate, error) {
	const query = `SELECT suggested_date, day_of_week, is_preferred_day, availability_score FROM suggest_deal_timing($1, $2)`
	var dates []models.SuggestedDate
	if err := r.db.SelectContext(ctx, &dates, query, athleteID, withinDays); err != nil {
		return nil, fmt.Errorf("suggest deal timing: %w", err)
	}
	return dates, nil
}

// UpcomingBlockingEvents loads the athlete's school's no-NIL academic events
// starting within the window.
func (r *AvailabilityRepository) UpcomingBlockingEvents(ctx context.Context, athleteID string, start, end time.Time) ([]models.AcademicEvent, error) {
	const query = `SELECT e.id, e.school_id, e.event_type, e.name, e.start_date, e.end_date, e.no_nil_activity, e.academic_year, e.semester, e.created_by, e.created_at, e.updated_at
FROM academic_calendars e
JOIN athletes a ON a.school_id = e.school_id
WHERE a.id = $1 AND e.no_nil_activity = TRUE AND e.end_date >= $2 AND e.start_date <= $3
ORDER BY e.start_date ASC`
	var events []models.AcademicEvent
	if err := r.db.SelectContext(ctx, &events, query, athleteID, start, end); err != nil {
		return nil, fmt.Errorf("upcoming blocking events: %w", err)
	}
	return events, nil
}
