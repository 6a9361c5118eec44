package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type matchRepository interface {
	CalculateBrandMatch(ctx context.Context, athleteID, brandID string) (*int, error)
	TopMatchesForAthlete(ctx context.Context, athleteID string, filter models.TopMatchFilter) ([]models.TopMatch, error)
	MatchesForBrand(ctx context.Context, brandID string) ([]models.AthleteMatch, error)
	ListForAthlete(ctx context.Context, athleteID string) ([]models.MatchScore, error)
}

type matchAthleteRepository interface {
	GetByID(ctx context.Context, id string) (*models.Athlete, error)
	FindByMajorCategories(ctx context.Context, categoryIDs []string, minGPA *float64, limit int) ([]models.Athlete, error)
}

type matchBrandRepository interface {
	GetByID(ctx context.Context, id string) (*models.Brand, error)
}

type matchTaxonomyLookup interface {
	CategoryIDsForIndustries(ctx context.Context, industries []string) ([]string, error)
}

// MatchService answers match queries for athletes and brands. Score
// arithmetic is owned by the calculate_brand_match procedure; this layer
// validates inputs, shapes filters and aggregates rows.
type MatchService struct {
	matches  matchRepository
	athletes matchAthleteRepository
	brands   matchBrandRepository
	taxonomy matchTaxonomyLookup
	cache    *CacheService
	logger   *zap.Logger
	cfg      config.MatchingConfig
}

// NewMatchService constructs a MatchService.
func NewMatchService(matches matchRepository, athletes matchAthleteRepository, brands matchBrandRepository, taxonomy matchTaxonomyLookup, cache *CacheService, logger *zap.Logger, cfg config.MatchingConfig) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTopLimit <= 0 {
		cfg.DefaultTopLimit = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &MatchService{matches: matches, athletes: athletes, brands: brands, taxonomy: taxonomy, cache: cache, logger: logger, cfg: cfg}
}

// CalculateMatchScore recomputes and persists the score for one pair. A nil
// procedure result means either profile is missing; an out-of-range score is
// treated as corrupt state and never returned to callers.
func (s *MatchService) CalculateMatchScore(ctx context.Context, athleteID, brandID string) (int, error) {
	if athleteID == "" || brandID == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "athleteId and brandId are required")
	}

	score, err := s.matches.CalculateBrandMatch(ctx, athleteID, brandID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to calculate match score")
	}
	if score == nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "athlete or brand profile not found")
	}
	if *score < 0 || *score > 100 {
		s.logger.Error("scoring procedure returned out-of-range score",
			zap.String("athlete_id", athleteID), zap.String("brand_id", brandID), zap.Int("score", *score))
		return 0, appErrors.Clone(appErrors.ErrInternal, "match score out of range")
	}

	if s.cache != nil {
		s.cache.InvalidateMatchStats(ctx, athleteID)
	}

	return *score, nil
}

// GetTopMatches returns an athlete's best matches, optionally filtered by
// minimum score and brand industries. The limit applies after filtering.
func (s *MatchService) GetTopMatches(ctx context.Context, athleteID string, filter models.TopMatchFilter) ([]models.TopMatch, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if filter.MinScore != nil && (*filter.MinScore < 0 || *filter.MinScore > 100) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minScore must be between 0 and 100")
	}
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.DefaultTopLimit
	}
	if filter.Limit > s.cfg.MaxPageSize {
		filter.Limit = s.cfg.MaxPageSize
	}

	if _, err := s.athletes.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAthleteNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load athlete")
	}

	matches, err := s.matches.TopMatchesForAthlete(ctx, athleteID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list top matches")
	}
	if matches == nil {
		matches = []models.TopMatch{}
	}
	return matches, nil
}

// GetMatchingAthletes returns a brand's candidate athletes page. Filters are
// applied to the full candidate set before pagination, so the reported total
// counts every filtered row rather than the page.
func (s *MatchService) GetMatchingAthletes(ctx context.Context, brandID string, filter models.AthleteMatchFilter, page, pageSize int) ([]models.AthleteMatch, *models.Pagination, error) {
	if brandID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "brandId is required")
	}
	if filter.MinGPA != nil && (*filter.MinGPA < 0 || *filter.MinGPA > 4.0) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "minGpa must be between 0.0 and 4.0")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	if _, err := s.brands.GetByID(ctx, brandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.ErrBrandNotFound
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load brand")
	}

	all, err := s.matches.MatchesForBrand(ctx, brandID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list brand matches")
	}

	filtered := filterAthleteMatches(all, filter)
	total := len(filtered)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return filtered[start:end], pagination, nil
}

func filterAthleteMatches(matches []models.AthleteMatch, filter models.AthleteMatchFilter) []models.AthleteMatch {
	sports := toLowerSet(filter.Sports)
	schools := toSet(filter.Schools)
	divisions := toLowerSet(filter.Divisions)

	filtered := make([]models.AthleteMatch, 0, len(matches))
	for _, m := range matches {
		if filter.MinGPA != nil && m.EffectiveGPA() < *filter.MinGPA {
			continue
		}
		if len(sports) > 0 && !sports[strings.ToLower(m.Sport)] {
			continue
		}
		if len(schools) > 0 && !schools[m.SchoolID] {
			continue
		}
		if len(divisions) > 0 && !divisions[strings.ToLower(m.Division)] {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// GetMatchStats aggregates an athlete's match rows into score buckets. The
// buckets partition the score range, so their sum always equals the total.
func (s *MatchService) GetMatchStats(ctx context.Context, athleteID string) (*models.MatchStats, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}

	cacheKey := fmt.Sprintf("match:stats:%s", athleteID)
	var cached models.MatchStats
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	rows, err := s.matches.ListForAthlete(ctx, athleteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load athlete matches")
	}

	stats := aggregateMatchStats(rows)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.StatsCacheTTL); err != nil {
			s.logger.Warn("failed to cache match stats", zap.String("athlete_id", athleteID), zap.Error(err))
		}
	}

	return stats, nil
}

func aggregateMatchStats(rows []models.MatchScore) *models.MatchStats {
	stats := &models.MatchStats{TotalMatches: len(rows)}
	if len(rows) == 0 {
		return stats
	}

	sum := 0
	for _, row := range rows {
		sum += row.Score
		switch {
		case row.Score >= 80:
			stats.HighMatches++
		case row.Score >= 60:
			stats.MediumMatches++
		default:
			stats.LowMatches++
		}
		if row.MajorMatch {
			stats.MajorMatches++
		}
		if row.IndustryMatch {
			stats.IndustryMatches++
		}
	}
	stats.AverageScore = sum / len(rows)
	return stats
}

// FindAthletesByIndustry returns searchable athletes whose major category
// feeds any of the given industries, ranked by platform score.
func (s *MatchService) FindAthletesByIndustry(ctx context.Context, industries []string, minGPA *float64, limit int) ([]models.Athlete, error) {
	if len(industries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one industry is required")
	}
	if minGPA != nil && (*minGPA < 0 || *minGPA > 4.0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minGpa must be between 0.0 and 4.0")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	categoryIDs, err := s.taxonomy.CategoryIDsForIndustries(ctx, industries)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrValidation.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve industry categories")
	}
	if len(categoryIDs) == 0 {
		return []models.Athlete{}, nil
	}

	athletes, err := s.athletes.FindByMajorCategories(ctx, categoryIDs, minGPA, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find athletes by industry")
	}
	if athletes == nil {
		athletes = []models.Athlete{}
	}
	return athletes, nil
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func toLowerSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
