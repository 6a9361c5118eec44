package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMatchRepositoryCalculateBrandMatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT calculate_brand_match($1, $2)")).
		WithArgs("athlete-1", "brand-1").
		WillReturnRows(sqlmock.NewRows([]string{"calculate_brand_match"}).AddRow(85))

	score, err := repo.CalculateBrandMatch(context.Background(), "athlete-1", "brand-1")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 85, *score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryCalculateBrandMatchNull(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT calculate_brand_match($1, $2)")).
		WithArgs("athlete-1", "brand-missing").
		WillReturnRows(sqlmock.NewRows([]string{"calculate_brand_match"}).AddRow(nil))

	score, err := repo.CalculateBrandMatch(context.Background(), "athlete-1", "brand-missing")
	require.NoError(t, err)
	assert.Nil(t, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryTopMatchesForAthleteFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"athlete_id", "brand_id", "match_score", "major_match", "industry_match", "values_match", "calculated_at",
		"brand_name", "brand_industry", "brand_logo_url", "brand_verified",
	}).AddRow("athlete-1", "brand-1", 92, true, true, false, now, "Acme Fitness", "fitness", nil, true)

	mock.ExpectQuery("SELECT m.athlete_id, .+ FROM athlete_brand_matches m").
		WithArgs("athlete-1", 60, sqlmock.AnyArg()).
		WillReturnRows(rows)

	minScore := 60
	matches, err := repo.TopMatchesForAthlete(context.Background(), "athlete-1", models.TopMatchFilter{
		MinScore:   &minScore,
		Industries: []string{"Fitness"},
		Limit:      5,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "brand-1", matches[0].BrandID)
	assert.Equal(t, 92, matches[0].Score)
	assert.Equal(t, "Acme Fitness", matches[0].BrandName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryMatchesForBrand(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	now := time.Now()
	gpa := 3.4
	rows := sqlmock.NewRows([]string{
		"athlete_id", "brand_id", "match_score", "major_match", "industry_match", "values_match", "calculated_at",
		"athlete_name", "sport", "school_id", "school_name", "division", "gpa", "cumulative_gpa", "gradeup_score",
	}).
		AddRow("athlete-1", "brand-1", 88, true, false, true, now, "Jamie Cole", "basketball", "school-1", "State U", "D1", gpa, nil, 91).
		AddRow("athlete-2", "brand-1", 71, false, true, false, now, "Sam Reyes", "soccer", "school-2", "Tech U", "D2", nil, 3.8, 84)

	mock.ExpectQuery("SELECT m.athlete_id, .+ FROM athlete_brand_matches m").
		WithArgs("brand-1").
		WillReturnRows(rows)

	matches, err := repo.MatchesForBrand(context.Background(), "brand-1")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 88, matches[0].Score)
	assert.InDelta(t, 3.4, matches[0].EffectiveGPA(), 0.001)
	assert.InDelta(t, 3.8, matches[1].EffectiveGPA(), 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
