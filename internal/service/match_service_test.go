package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type matchRepoStub struct {
	score       *int
	calcErr     error
	topMatches  []models.TopMatch
	brandRows   []models.AthleteMatch
	athleteRows []models.MatchScore
	lastFilter  models.TopMatchFilter
}

func (m *matchRepoStub) CalculateBrandMatch(ctx context.Context, athleteID, brandID string) (*int, error) {
	return m.score, m.calcErr
}

func (m *matchRepoStub) TopMatchesForAthlete(ctx context.Context, athleteID string, filter models.TopMatchFilter) ([]models.TopMatch, error) {
	m.lastFilter = filter
	return m.topMatches, nil
}

func (m *matchRepoStub) MatchesForBrand(ctx context.Context, brandID string) ([]models.AthleteMatch, error) {
	return m.brandRows, nil
}

func (m *matchRepoStub) ListForAthlete(ctx context.Context, athleteID string) ([]models.MatchScore, error) {
	return m.athleteRows, nil
}

type athleteRepoStub struct {
	athletes map[string]*models.Athlete
	found    []models.Athlete
}

func (a *athleteRepoStub) GetByID(ctx context.Context, id string) (*models.Athlete, error) {
	if athlete, ok := a.athletes[id]; ok {
		return athlete, nil
	}
	return nil, sql.ErrNoRows
}

func (a *athleteRepoStub) FindByMajorCategories(ctx context.Context, categoryIDs []string, minGPA *float64, limit int) ([]models.Athlete, error) {
	return a.found, nil
}

type brandRepoStub struct {
	brands map[string]*models.Brand
}

func (b *brandRepoStub) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	if brand, ok := b.brands[id]; ok {
		return brand, nil
	}
	return nil, sql.ErrNoRows
}

type taxonomyLookupStub struct {
	ids     []string
	queried []string
}

func (t *taxonomyLookupStub) CategoryIDsForIndustries(ctx context.Context, industries []string) ([]string, error) {
	t.queried = industries
	return t.ids, nil
}

func newMatchService(matches *matchRepoStub, athletes *athleteRepoStub, brands *brandRepoStub, taxonomy *taxonomyLookupStub) *MatchService {
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewMatchService(matches, athletes, brands, taxonomy, cache, zap.NewNop(), config.MatchingConfig{
		DefaultTopLimit: 10,
		MaxPageSize:     100,
		StatsCacheTTL:   time.Minute,
	})
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestCalculateMatchScoreRejectsOutOfRange(t *testing.T) {
	matches := &matchRepoStub{score: intPtr(101)}
	svc := newMatchService(matches, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	_, err := svc.CalculateMatchScore(context.Background(), "athlete-1", "brand-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestCalculateMatchScoreMissingProfile(t *testing.T) {
	matches := &matchRepoStub{score: nil}
	svc := newMatchService(matches, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	_, err := svc.CalculateMatchScore(context.Background(), "athlete-1", "brand-gone")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCalculateMatchScoreSuccess(t *testing.T) {
	matches := &matchRepoStub{score: intPtr(85)}
	svc := newMatchService(matches, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	score, err := svc.CalculateMatchScore(context.Background(), "athlete-1", "brand-1")
	require.NoError(t, err)
	assert.Equal(t, 85, score)
}

func TestGetTopMatchesAppliesDefaultLimit(t *testing.T) {
	matches := &matchRepoStub{}
	athletes := &athleteRepoStub{athletes: map[string]*models.Athlete{"athlete-1": {ID: "athlete-1"}}}
	svc := newMatchService(matches, athletes, &brandRepoStub{}, &taxonomyLookupStub{})

	result, err := svc.GetTopMatches(context.Background(), "athlete-1", models.TopMatchFilter{})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 10, matches.lastFilter.Limit)
}

func TestGetTopMatchesRejectsBadMinScore(t *testing.T) {
	svc := newMatchService(&matchRepoStub{}, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	_, err := svc.GetTopMatches(context.Background(), "athlete-1", models.TopMatchFilter{MinScore: intPtr(150)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetTopMatchesUnknownAthlete(t *testing.T) {
	svc := newMatchService(&matchRepoStub{}, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	_, err := svc.GetTopMatches(context.Background(), "athlete-missing", models.TopMatchFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAthleteNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetMatchingAthletesPaginatesAfterFiltering(t *testing.T) {
	rows := make([]models.AthleteMatch, 0, 37)
	for i := 0; i < 37; i++ {
		gpa := 2.0
		if i < 17 {
			gpa = 3.5
		}
		row := models.AthleteMatch{Sport: "basketball"}
		row.AthleteID = fmt.Sprintf("athlete-%02d", i)
		row.Score = 90 - i
		row.CumulativeGPA = floatPtr(gpa)
		rows = append(rows, row)
	}
	matches := &matchRepoStub{brandRows: rows}
	brands := &brandRepoStub{brands: map[string]*models.Brand{"brand-1": {ID: "brand-1"}}}
	svc := newMatchService(matches, &athleteRepoStub{}, brands, &taxonomyLookupStub{})

	filter := models.AthleteMatchFilter{MinGPA: floatPtr(3.0)}

	page1, pagination, err := svc.GetMatchingAthletes(context.Background(), "brand-1", filter, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page1, 10)
	assert.Equal(t, 17, pagination.TotalCount)

	page2, pagination, err := svc.GetMatchingAthletes(context.Background(), "brand-1", filter, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 7)
	assert.Equal(t, 17, pagination.TotalCount)

	page3, _, err := svc.GetMatchingAthletes(context.Background(), "brand-1", filter, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestGetMatchingAthletesFilterChain(t *testing.T) {
	mk := func(id, sport, school, division string, gpa float64) models.AthleteMatch {
		row := models.AthleteMatch{Sport: sport, SchoolID: school, Division: division}
		row.AthleteID = id
		row.CumulativeGPA = floatPtr(gpa)
		return row
	}
	matches := &matchRepoStub{brandRows: []models.AthleteMatch{
		mk("a1", "Basketball", "school-1", "D1", 3.8),
		mk("a2", "soccer", "school-1", "D1", 3.9),
		mk("a3", "basketball", "school-2", "D1", 3.7),
		mk("a4", "basketball", "school-1", "D2", 3.6),
		mk("a5", "basketball", "school-1", "D1", 2.4),
	}}
	brands := &brandRepoStub{brands: map[string]*models.Brand{"brand-1": {ID: "brand-1"}}}
	svc := newMatchService(matches, &athleteRepoStub{}, brands, &taxonomyLookupStub{})

	filter := models.AthleteMatchFilter{
		MinGPA:    floatPtr(3.0),
		Sports:    []string{"Basketball"},
		Schools:   []string{"school-1"},
		Divisions: []string{"d1"},
	}
	result, pagination, err := svc.GetMatchingAthletes(context.Background(), "brand-1", filter, 1, 20)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a1", result[0].AthleteID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestGetMatchStatsBucketsPartitionTotal(t *testing.T) {
	rows := []models.MatchScore{
		{Score: 95, MajorMatch: true, IndustryMatch: true},
		{Score: 80, MajorMatch: true},
		{Score: 79, IndustryMatch: true},
		{Score: 60},
		{Score: 59},
		{Score: 0},
	}
	matches := &matchRepoStub{athleteRows: rows}
	svc := newMatchService(matches, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	stats, err := svc.GetMatchStats(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalMatches)
	assert.Equal(t, 2, stats.HighMatches)
	assert.Equal(t, 2, stats.MediumMatches)
	assert.Equal(t, 2, stats.LowMatches)
	assert.Equal(t, stats.TotalMatches, stats.HighMatches+stats.MediumMatches+stats.LowMatches)
	assert.Equal(t, 2, stats.MajorMatches)
	assert.Equal(t, 2, stats.IndustryMatches)
	assert.Equal(t, 62, stats.AverageScore)
}

func TestGetMatchStatsEmpty(t *testing.T) {
	svc := newMatchService(&matchRepoStub{}, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{})

	stats, err := svc.GetMatchStats(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMatches)
	assert.Equal(t, 0, stats.AverageScore)
}

func TestFindAthletesByIndustryNoCategories(t *testing.T) {
	svc := newMatchService(&matchRepoStub{}, &athleteRepoStub{}, &brandRepoStub{}, &taxonomyLookupStub{ids: nil})

	athletes, err := svc.FindAthletesByIndustry(context.Background(), []string{"Technology"}, nil, 20)
	require.NoError(t, err)
	assert.Empty(t, athletes)
}

func TestFindAthletesByIndustryRanked(t *testing.T) {
	athletes := &athleteRepoStub{found: []models.Athlete{
		{ID: "athlete-1", GradeupScore: 92},
		{ID: "athlete-2", GradeupScore: 85},
	}}
	svc := newMatchService(&matchRepoStub{}, athletes, &brandRepoStub{}, &taxonomyLookupStub{ids: []string{"cat-1"}})

	result, err := svc.FindAthletesByIndustry(context.Background(), []string{"technology"}, floatPtr(3.0), 20)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "athlete-1", result[0].ID)
}

func TestFindAthletesByIndustrySetOverlap(t *testing.T) {
	taxonomy := &taxonomyLookupStub{ids: []string{"cat-1", "cat-2"}}
	athletes := &athleteRepoStub{found: []models.Athlete{{ID: "athlete-1", GradeupScore: 90}}}
	svc := newMatchService(&matchRepoStub{}, athletes, &brandRepoStub{}, taxonomy)

	result, err := svc.FindAthletesByIndustry(context.Background(), []string{"technology", "finance"}, nil, 20)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, []string{"technology", "finance"}, taxonomy.queried)

	_, err = svc.FindAthletesByIndustry(context.Background(), nil, nil, 20)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
