package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

func TestAvailabilityRepositoryGetAndUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO athlete_availability").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.AthleteAvailability{
		AthleteID:        "athlete-1",
		MaxDealsPerMonth: 4,
		NoFinalsDeals:    true,
		NoMidtermsDeals:  false,
		PreferredDays:    pq.StringArray{"friday", "saturday"},
		MinNoticeDays:    3,
		MaxHoursPerWeek:  8,
		BlockedPeriods:   types.JSONText(`[]`),
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "athlete_id", "blocked_periods", "study_hours", "max_deals_per_month",
		"no_finals_deals", "no_midterms_deals", "preferred_deal_days", "min_notice_days",
		"max_hours_per_week", "notes", "created_at", "updated_at",
	}).AddRow("avail-1", "athlete-1", `[]`, nil, 4, true, false, `{friday,saturday}`, 3, 8, nil, now, now)
	mock.ExpectQuery("SELECT id, athlete_id, .+ FROM athlete_availability WHERE athlete_id").
		WithArgs("athlete-1").
		WillReturnRows(rows)

	availability, err := repo.GetByAthlete(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, "avail-1", availability.ID)
	assert.Equal(t, 4, availability.MaxDealsPerMonth)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryAppendBlockedPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("UPDATE athlete_availability").
		WithArgs("athlete-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.AppendBlockedPeriod(context.Background(), "athlete-1", []byte(`[{"id":"bp-1"}]`))
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryRemoveBlockedPeriodMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("UPDATE athlete_availability").
		WithArgs("athlete-unknown", "bp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.RemoveBlockedPeriod(context.Background(), "athlete-unknown", "bp-1")
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryStoredProcedures(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_athlete_available($1, $2)")).
		WithArgs("athlete-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"is_athlete_available"}).AddRow(false))

	available, err := repo.IsAthleteAvailable(context.Background(), "athlete-1", date)
	require.NoError(t, err)
	assert.False(t, available)

	start := date
	end := date.AddDate(0, 0, 30)
	periodRows := sqlmock.NewRows([]string{"period_type", "name", "start_date", "end_date", "source"}).
		AddRow("finals", "Spring Finals", start, start.AddDate(0, 0, 7), "academic_calendar").
		AddRow("custom", "Family trip", start.AddDate(0, 0, 10), start.AddDate(0, 0, 14), "athlete_preference")
	mock.ExpectQuery("FROM get_athlete_blocked_periods").
		WithArgs("athlete-1", start, end).
		WillReturnRows(periodRows)

	periods, err := repo.GetBlockedPeriods(context.Background(), "athlete-1", start, end)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, models.SourceAcademicCalendar, periods[0].Source)
	assert.Equal(t, models.SourceAthletePreference, periods[1].Source)

	suggestRows := sqlmock.NewRows([]string{"suggested_date", "day_of_week", "is_preferred_day", "availability_score"}).
		AddRow(date, "friday", true, 95)
	mock.ExpectQuery("FROM suggest_deal_timing").
		WithArgs("athlete-1", 30).
		WillReturnRows(suggestRows)

	dates, err := repo.SuggestDealTiming(context.Background(), "athlete-1", 30)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.True(t, dates[0].IsPreferred)
	assert.NoError(t, mock.ExpectationsWereMet())
}
