package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type availabilityRepoStub struct {
	record       *models.AthleteAvailability
	upserted     *models.AthleteAvailability
	appended     [][]byte
	removed      []string
	available    bool
	periods      []models.BlockedPeriod
	periodsErr   error
	suggested    []models.SuggestedDate
	suggestedErr error
	events       []models.AcademicEvent
}

func (s *availabilityRepoStub) GetByAthlete(ctx context.Context, athleteID string) (*models.AthleteAvailability, error) {
	if s.record == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.record
	return &copied, nil
}

func (s *availabilityRepoStub) Upsert(ctx context.Context, availability *models.AthleteAvailability) error {
	s.upserted = availability
	copied := *availability
	s.record = &copied
	return nil
}

func (s *availabilityRepoStub) AppendBlockedPeriod(ctx context.Context, athleteID string, periodJSON []byte) (bool, error) {
	s.appended = append(s.appended, periodJSON)
	return s.record != nil, nil
}

func (s *availabilityRepoStub) RemoveBlockedPeriod(ctx context.Context, athleteID, periodID string) (bool, error) {
	s.removed = append(s.removed, periodID)
	return true, nil
}

func (s *availabilityRepoStub) IsAthleteAvailable(ctx context.Context, athleteID string, date time.Time) (bool, error) {
	return s.available, nil
}

func (s *availabilityRepoStub) GetBlockedPeriods(ctx context.Context, athleteID string, start, end time.Time) ([]models.BlockedPeriod, error) {
	return s.periods, s.periodsErr
}

func (s *availabilityRepoStub) SuggestDealTiming(ctx context.Context, athleteID string, withinDays int) ([]models.SuggestedDate, error) {
	return s.suggested, s.suggestedErr
}

func (s *availabilityRepoStub) UpcomingBlockingEvents(ctx context.Context, athleteID string, start, end time.Time) ([]models.AcademicEvent, error) {
	return s.events, nil
}

func newAvailabilityService(repo *availabilityRepoStub, athletes *athleteRepoStub) *AvailabilityService {
	return NewAvailabilityService(repo, athletes, nil, zap.NewNop(), config.AvailabilityConfig{
		BlockedWindowDays:  180,
		SuggestWindowDays:  30,
		BlockingEventsDays: 90,
	})
}

func knownAthlete() *athleteRepoStub {
	return &athleteRepoStub{athletes: map[string]*models.Athlete{"athlete-1": {ID: "athlete-1"}}}
}

func TestGetAvailabilityDefaultsWhenUnset(t *testing.T) {
	svc := newAvailabilityService(&availabilityRepoStub{}, knownAthlete())

	availability, err := svc.GetAvailability(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, 5, availability.MaxDealsPerMonth)
	assert.True(t, availability.NoFinalsDeals)
	assert.True(t, availability.NoMidtermsDeals)
	assert.Equal(t, pq.StringArray{"friday", "saturday", "sunday"}, availability.PreferredDays)
}

func TestUpdateAvailabilityLowercasesDayNames(t *testing.T) {
	repo := &availabilityRepoStub{}
	svc := newAvailabilityService(repo, knownAthlete())

	saved, err := svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 4,
		PreferredDays:    []string{"Friday", "SATURDAY", "friday"},
		MinNoticeDays:    2,
		MaxHoursPerWeek:  12,
	})
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"friday", "saturday"}, saved.PreferredDays)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, 4, repo.upserted.MaxDealsPerMonth)
}

func TestUpdateAvailabilityRejectsUnknownDay(t *testing.T) {
	svc := newAvailabilityService(&availabilityRepoStub{}, knownAthlete())

	_, err := svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 4,
		PreferredDays:    []string{"funday"},
		MaxHoursPerWeek:  12,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "funday")
	assert.Contains(t, appErr.Message, "monday")
}

func TestUpdateAvailabilityEnumeratesAllInvalidDays(t *testing.T) {
	svc := newAvailabilityService(&availabilityRepoStub{}, knownAthlete())

	_, err := svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 4,
		PreferredDays:    []string{"funday", "monday", "blursday"},
		MaxHoursPerWeek:  12,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "funday")
	assert.Contains(t, appErr.Message, "blursday")
}

func TestUpdateAvailabilityAcceptsRangeBounds(t *testing.T) {
	repo := &availabilityRepoStub{}
	svc := newAvailabilityService(repo, knownAthlete())

	saved, err := svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 0,
		PreferredDays:    nil,
		MinNoticeDays:    0,
		MaxHoursPerWeek:  0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, saved.MaxDealsPerMonth)
	assert.Empty(t, saved.PreferredDays)

	saved, err = svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 100,
		PreferredDays:    []string{"monday"},
		MinNoticeDays:    30,
		MaxHoursPerWeek:  40,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, saved.MaxDealsPerMonth)
	assert.Equal(t, 30, saved.MinNoticeDays)
	assert.Equal(t, 40, saved.MaxHoursPerWeek)
}

func TestUpdateAvailabilityRejectsOutOfRangeValues(t *testing.T) {
	svc := newAvailabilityService(&availabilityRepoStub{}, knownAthlete())

	cases := []UpdateAvailabilityRequest{
		{MaxDealsPerMonth: 101, PreferredDays: []string{"monday"}, MaxHoursPerWeek: 10},
		{MaxDealsPerMonth: 5, PreferredDays: []string{"monday"}, MinNoticeDays: 31, MaxHoursPerWeek: 10},
		{MaxDealsPerMonth: 5, PreferredDays: []string{"monday"}, MaxHoursPerWeek: 41},
	}
	for _, req := range cases {
		_, err := svc.UpdateAvailability(context.Background(), "athlete-1", req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestUpdateAvailabilityPreservesBlockedPeriods(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	existing.ID = "avail-1"
	existing.BlockedPeriods = types.JSONText(`[{"id":"bp-1","name":"Trip","start_date":"2026-09-01","end_date":"2026-09-03"}]`)
	repo := &availabilityRepoStub{record: &existing}
	svc := newAvailabilityService(repo, knownAthlete())

	saved, err := svc.UpdateAvailability(context.Background(), "athlete-1", UpdateAvailabilityRequest{
		MaxDealsPerMonth: 2,
		PreferredDays:    []string{"monday"},
		MaxHoursPerWeek:  5,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(existing.BlockedPeriods), string(saved.BlockedPeriods))
}

func TestAddBlockedPeriodRejectsInvertedDates(t *testing.T) {
	svc := newAvailabilityService(&availabilityRepoStub{}, knownAthlete())

	_, err := svc.AddBlockedPeriod(context.Background(), "athlete-1", AddBlockedPeriodRequest{
		Name:      "Family trip",
		StartDate: "2026-09-10",
		EndDate:   "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAddBlockedPeriodAppendsAtomically(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	repo := &availabilityRepoStub{record: &existing}
	svc := newAvailabilityService(repo, knownAthlete())

	period, err := svc.AddBlockedPeriod(context.Background(), "athlete-1", AddBlockedPeriodRequest{
		Name:      "Family trip",
		StartDate: "2026-09-01",
		EndDate:   "2026-09-10",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, period.ID)
	require.Len(t, repo.appended, 1)

	var appended []models.CustomBlockedPeriod
	require.NoError(t, json.Unmarshal(repo.appended[0], &appended))
	require.Len(t, appended, 1)
	assert.Equal(t, "Family trip", appended[0].Name)
}

func TestAddBlockedPeriodSeedsMissingRecord(t *testing.T) {
	repo := &availabilityRepoStub{}
	svc := newAvailabilityService(repo, knownAthlete())

	period, err := svc.AddBlockedPeriod(context.Background(), "athlete-1", AddBlockedPeriodRequest{
		Name:      "Recruiting visit",
		StartDate: "2026-10-01",
		EndDate:   "2026-10-02",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, period.ID)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "athlete-1", repo.upserted.AthleteID)
	assert.Len(t, repo.appended, 2)
}

func TestRemoveBlockedPeriodUnknownID(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	existing.BlockedPeriods = types.JSONText(`[{"id":"bp-1","name":"Trip","start_date":"2026-09-01","end_date":"2026-09-03"}]`)
	repo := &availabilityRepoStub{record: &existing}
	svc := newAvailabilityService(repo, knownAthlete())

	err := svc.RemoveBlockedPeriod(context.Background(), "athlete-1", "bp-unknown")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.removed)
}

func TestRemoveBlockedPeriodDelegates(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	existing.BlockedPeriods = types.JSONText(`[{"id":"bp-1","name":"Trip","start_date":"2026-09-01","end_date":"2026-09-03"}]`)
	repo := &availabilityRepoStub{record: &existing}
	svc := newAvailabilityService(repo, knownAthlete())

	require.NoError(t, svc.RemoveBlockedPeriod(context.Background(), "athlete-1", "bp-1"))
	assert.Equal(t, []string{"bp-1"}, repo.removed)
}

func TestCheckAvailabilityReasonFromBlockedPeriod(t *testing.T) {
	repo := &availabilityRepoStub{
		available: false,
		periods: []models.BlockedPeriod{
			{PeriodType: "finals", Name: "Spring Finals", Source: models.SourceAcademicCalendar},
		},
	}
	svc := newAvailabilityService(repo, knownAthlete())

	check, err := svc.CheckAvailability(context.Background(), "athlete-1", time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, check.Available)
	assert.Contains(t, check.Reason, "Spring Finals")
}

func TestCheckAvailabilityAvailableHasNoReason(t *testing.T) {
	repo := &availabilityRepoStub{available: true}
	svc := newAvailabilityService(repo, knownAthlete())

	check, err := svc.CheckAvailability(context.Background(), "athlete-1", time.Now())
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Empty(t, check.Reason)
}

func TestSuggestDealTimingSortsByScoreDesc(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &availabilityRepoStub{suggested: []models.SuggestedDate{
		{Date: day, Availability: 70},
		{Date: day.AddDate(0, 0, 1), Availability: 95},
		{Date: day.AddDate(0, 0, 2), Availability: 95},
	}}
	svc := newAvailabilityService(repo, knownAthlete())

	dates, err := svc.SuggestDealTiming(context.Background(), "athlete-1", 0)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, 95, dates[0].Availability)
	assert.True(t, dates[0].Date.Before(dates[1].Date))
	assert.Equal(t, 70, dates[2].Availability)
}

func TestGetUpcomingBlockingEventsRespectsPreferences(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	existing.NoFinalsDeals = false
	repo := &availabilityRepoStub{
		record: &existing,
		events: []models.AcademicEvent{
			{ID: "e1", EventType: models.EventFinals, Name: "Finals Week"},
			{ID: "e2", EventType: models.EventMidterms, Name: "Midterms"},
			{ID: "e3", EventType: models.EventBreak, Name: "Spring Break"},
		},
	}
	svc := newAvailabilityService(repo, knownAthlete())

	events, err := svc.GetUpcomingBlockingEvents(context.Background(), "athlete-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e3", events[1].ID)
}

func TestGetAvailabilitySummaryDegradesPerBranch(t *testing.T) {
	existing := models.DefaultAvailability("athlete-1")
	repo := &availabilityRepoStub{
		record:       &existing,
		periodsErr:   errors.New("procedure timeout"),
		suggested:    []models.SuggestedDate{{Availability: 80}},
		suggestedErr: nil,
	}
	svc := newAvailabilityService(repo, knownAthlete())

	summary, err := svc.GetAvailabilitySummary(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Preferences.MaxDealsPerMonth)
	assert.Empty(t, summary.BlockedPeriods)
	assert.Len(t, summary.SuggestedDates, 1)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, "blocked_periods unavailable", summary.Warnings[0])
}
