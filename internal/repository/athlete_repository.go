package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

const athleteColumns = `id, user_id, school_id, full_name, sport, division, gpa, cumulative_gpa, major_category_id, gradeup_score, is_searchable, accepting_deals, created_at, updated_at`

// AthleteRepository reads athlete profiles.
type AthleteRepository struct {
	db *sqlx.DB
}

// NewAthleteRepository constructs an athlete repository.
func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

// GetByID fetches an athlete profile.
func (r *AthleteRepository) GetByID(ctx context.Context, id string) (*models.Athlete, error) {
	query := fmt.Sprintf("SELECT %s FROM athletes WHERE id = $1", athleteColumns)
	var athlete models.Athlete
	if err := r.db.GetContext(ctx, &athlete, query, id); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// GetByUserID resolves the authenticated user to their athlete profile.
func (r *AthleteRepository) GetByUserID(ctx context.Context, userID string) (*models.Athlete, error) {
	query := fmt.Sprintf("SELECT %s FROM athletes WHERE user_id = $1", athleteColumns)
	var athlete models.Athlete
	if err := r.db.GetContext(ctx, &athlete, query, userID); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// ListRecalcCandidateIDs returns IDs of athletes eligible for scoring:
// searchable and accepting deals.
func (r *AthleteRepository) ListRecalcCandidateIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM athletes WHERE is_searchable = TRUE AND accepting_deals = TRUE ORDER BY id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list recalc candidate athletes: %w", err)
	}
	return ids, nil
}

// FindByMajorCategories returns searchable, deal-accepting athletes whose
// major category is in the given set, ranked by platform score, with an
// optional GPA floor applied against the effective GPA.
func (r *AthleteRepository) FindByMajorCategories(ctx context.Context, categoryIDs []string, minGPA *float64, limit int) ([]models.Athlete, error) {
	if len(categoryIDs) == 0 {
		return []models.Athlete{}, nil
	}
	where := []string{
		"is_searchable = TRUE",
		"accepting_deals = TRUE",
		"major_category_id = ANY($1)",
	}
	args := []interface{}{pq.Array(categoryIDs)}
	if minGPA != nil {
		where = append(where, fmt.Sprintf("COALESCE(cumulative_gpa, gpa, 0) >= $%d", len(args)+1))
		args = append(args, *minGPA)
	}
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM athletes WHERE %s ORDER BY gradeup_score DESC LIMIT %d",
		athleteColumns, strings.Join(where, " AND "), limit)
	var athletes []models.Athlete
	if err := r.db.SelectContext(ctx, &athletes, query, args...); err != nil {
		return nil, fmt.Errorf("find athletes by major category: %w", err)
	}
	return athletes, nil
}
