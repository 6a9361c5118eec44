package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

// MatchRepository reads precomputed match rows and invokes the scoring
// procedure. Score arithmetic lives in the database; this layer never
// reproduces it.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository constructs a match repository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// CalculateBrandMatch invokes the authoritative scoring procedure for one
// (athlete, brand) pair. The procedure persists the athlete_brand_matches row
// as a side effect and returns the integer score, or NULL when the pair
// cannot be scored.
func (r *MatchRepository) CalculateBrandMatch(ctx context.Context, athleteID, brandID string) (*int, error) {
	var score *int
	if err := r.db.GetContext(ctx, &score, "SELECT calculate_brand_match($1, $2)", athleteID, brandID); err != nil {
		return nil, fmt.Errorf("calculate brand match: %w", err)
	}
	return score, nil
}

// TopMatchesForAthlete returns the athlete's highest-scoring matches joined
// with brand summaries. All filters are pushed into SQL so the limit applies
// after filtering.
func (r *MatchRepository) TopMatchesForAthlete(ctx context.Context, athleteID string, filter models.TopMatchFilter) ([]models.TopMatch, error) {
	where := []string{"m.athlete_id = $1"}
	args := []interface{}{athleteID}
	if filter.MinScore != nil {
		where = append(where, fmt.Sprintf("m.match_score >= $%d", len(args)+1))
		args = append(args, *filter.MinScore)
	}
	if len(filter.Industries) > 0 {
		patterns := make([]string, len(filter.Industries))
		for i, industry := range filter.Industries {
			patterns[i] = "%" + strings.ToLower(strings.TrimSpace(industry)) + "%"
		}
		where = append(where, fmt.Sprintf("LOWER(b.industry) LIKE ANY($%d)", len(args)+1))
		args = append(args, pq.Array(patterns))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT m.athlete_id, m.brand_id, m.match_score, m.major_match, m.industry_match, m.values_match, m.calculated_at,
b.name AS brand_name, b.industry AS brand_industry, b.logo_url AS brand_logo_url, b.is_verified AS brand_verified
FROM athlete_brand_matches m
JOIN brands b ON b.id = m.brand_id
WHERE %s
ORDER BY m.match_score DESC, m.calculated_at DESC
LIMIT %d`, strings.Join(where, " AND "), limit)

	var matches []models.TopMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("list top matches: %w", err)
	}
	return matches, nil
}

// MatchesForBrand loads every match row for a brand joined with athlete
// summaries, restricted to searchable athletes accepting deals, ordered by
// score. GPA/sport/school/division filtering and pagination happen in the
// service layer so the reported total reflects the whole filtered set.
func (r *MatchRepository) MatchesForBrand(ctx context.Context, brandID string) ([]models.AthleteMatch, error) {
	const query = `SELECT m.athlete_id, m.brand_id, m.match_score, m.major_match, m.industry_match, m.values_match, m.calculated_at,
a.full_name AS athlete_name, a.sport, a.school_id, s.name AS school_name, a.division, a.gpa, a.cumulative_gpa, a.gradeup_score
FROM athlete_brand_matches m
JOIN athletes a ON a.id = m.athlete_id
JOIN schools s ON s.id = a.school_id
WHERE m.brand_id = $1 AND a.is_searchable = TRUE AND a.accepting_deals = TRUE
ORDER BY m.match_score DESC, m.calculated_at DESC`
	var matches []models.AthleteMatch
	if err := r.db.SelectContext(ctx, &matches, query, brandID); err != nil {
		return nil, fmt.Errorf("list brand matches: %w", err)
	}
	return matches, nil
}

// ListForAthlete loads the athlete's raw match rows for aggregation.
func (r *MatchRepository) ListForAthlete(ctx context.Context, athleteID string) ([]models.MatchScore, error) {
	const query = `SELECT athlete_id, brand_id, match_score, major_match, industry_match, values_match, calculated_at
FROM athlete_brand_matches WHERE athlete_id = $1`
	var matches []models.MatchScore
	if err := r.db.SelectContext(ctx, &matches, query, athleteID); err != nil {
		return nil, fmt.Errorf("list athlete matches: %w", err)
	}
	return matches, nil
}
