package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type availabilityRepository interface {
	GetByAthlete(ctx context.Context, athleteID string) (*models.AthleteAvailability, error)
	Upsert(ctx context.Context, availability *models.AthleteAvailability) error
	AppendBlockedPeriod(ctx context.Context, athleteID string, periodJSON []byte) (bool, error)
	RemoveBlockedPeriod(ctx context.Context, athleteID, periodID string) (bool, error)
	IsAthleteAvailable(ctx context.Context, athleteID string, date time.Time) (bool, error)
	GetBlockedPeriods(ctx context.Context, athleteID string, start, end time.Time) ([]models.BlockedPeriod, error)
	SuggestDealTiming(ctx context.Context, athleteID string, withinDays int) ([]models.SuggestedDate, error)
	UpcomingBlockingEvents(ctx context.Context, athleteID string, start, end time.Time) ([]models.AcademicEvent, error)
}

type availabilityAthleteRepository interface {
	GetByID(ctx context.Context, id string) (*models.Athlete, error)
}

// UpdateAvailabilityRequest carries the full preference payload. The record
// is replaced wholesale; custom blocked periods are edited through the
// dedicated add/remove operations.
type UpdateAvailabilityRequest struct {
	MaxDealsPerMonth int      `json:"max_deals_per_month" validate:"min=0,max=100"`
	NoFinalsDeals    bool     `json:"no_finals_deals"`
	NoMidtermsDeals  bool     `json:"no_midterms_deals"`
	PreferredDays    []string `json:"preferred_deal_days"`
	MinNoticeDays    int      `json:"min_notice_days" validate:"min=0,max=30"`
	MaxHoursPerWeek  int      `json:"max_hours_per_week" validate:"min=0,max=40"`
	StudyHours       *string  `json:"study_hours,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// AddBlockedPeriodRequest creates one custom blackout window.
type AddBlockedPeriodRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// AvailabilityService owns athlete scheduling preferences and the calendar
// queries built on the availability stored procedures. The procedures are the
// single source of truth for availability verdicts.
type AvailabilityService struct {
	repo      availabilityRepository
	athletes  availabilityAthleteRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.AvailabilityConfig
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, athletes availabilityAthleteRepository, validate *validator.Validate, logger *zap.Logger, cfg config.AvailabilityConfig) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.BlockedWindowDays <= 0 {
		cfg.BlockedWindowDays = 180
	}
	if cfg.SuggestWindowDays <= 0 {
		cfg.SuggestWindowDays = 30
	}
	if cfg.BlockingEventsDays <= 0 {
		cfg.BlockingEventsDays = 90
	}
	return &AvailabilityService{repo: repo, athletes: athletes, validator: validate, logger: logger, cfg: cfg}
}

// GetAvailability returns the athlete's saved preferences, or the defaults
// when none exist yet.
func (s *AvailabilityService) GetAvailability(ctx context.Context, athleteID string) (*models.AthleteAvailability, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	availability, err := s.repo.GetByAthlete(ctx, athleteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultAvailability(athleteID)
			return &defaults, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return availability, nil
}

// CheckAvailability asks the stored procedure whether the athlete can take a
// deal on the given date. The reason is advisory, derived from overlapping
// blocked periods; the procedure's boolean is the verdict.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, athleteID string, date time.Time) (*models.AvailabilityCheck, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	available, err := s.repo.IsAthleteAvailable(ctx, athleteID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
	}

	check := &models.AvailabilityCheck{Available: available}
	if available {
		return check, nil
	}

	periods, err := s.repo.GetBlockedPeriods(ctx, athleteID, date, date)
	if err != nil {
		s.logger.Warn("failed to resolve unavailability reason", zap.String("athlete_id", athleteID), zap.Error(err))
		check.Reason = "athlete is unavailable on this date"
		return check, nil
	}
	if len(periods) > 0 {
		check.Reason = fmt.Sprintf("blocked by %s (%s)", periods[0].Name, periods[0].PeriodType)
	} else {
		check.Reason = "athlete is unavailable on this date"
	}
	return check, nil
}

// GetBlockedPeriods returns merged academic and custom blackout windows. A
// zero start defaults to today, a zero end to the configured lookahead.
func (s *AvailabilityService) GetBlockedPeriods(ctx context.Context, athleteID string, start, end time.Time) ([]models.BlockedPeriod, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if start.IsZero() {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, s.cfg.BlockedWindowDays)
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	periods, err := s.repo.GetBlockedPeriods(ctx, athleteID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocked periods")
	}
	if periods == nil {
		periods = []models.BlockedPeriod{}
	}
	return periods, nil
}

// SuggestDealTiming returns candidate dates ranked best first.
func (s *AvailabilityService) SuggestDealTiming(ctx context.Context, athleteID string, withinDays int) ([]models.SuggestedDate, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if withinDays <= 0 {
		withinDays = s.cfg.SuggestWindowDays
	}
	if withinDays > 365 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "withinDays must not exceed 365")
	}

	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	dates, err := s.repo.SuggestDealTiming(ctx, athleteID, withinDays)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to suggest deal timing")
	}

	sort.SliceStable(dates, func(i, j int) bool {
		if dates[i].Availability != dates[j].Availability {
			return dates[i].Availability > dates[j].Availability
		}
		return dates[i].Date.Before(dates[j].Date)
	})
	if dates == nil {
		dates = []models.SuggestedDate{}
	}
	return dates, nil
}

// UpdateAvailability replaces the athlete's preferences after validation.
// Day names are case-insensitive on input and stored lowercase. Existing
// custom blocked periods are preserved.
func (s *AvailabilityService) UpdateAvailability(ctx context.Context, athleteID string, req UpdateAvailabilityRequest) (*models.AthleteAvailability, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	days, err := normalizeDays(req.PreferredDays)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	availability, err := s.repo.GetByAthlete(ctx, athleteID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
		}
		defaults := models.DefaultAvailability(athleteID)
		availability = &defaults
	}

	availability.MaxDealsPerMonth = req.MaxDealsPerMonth
	availability.NoFinalsDeals = req.NoFinalsDeals
	availability.NoMidtermsDeals = req.NoMidtermsDeals
	availability.PreferredDays = pq.StringArray(days)
	availability.MinNoticeDays = req.MinNoticeDays
	availability.MaxHoursPerWeek = req.MaxHoursPerWeek
	availability.StudyHours = req.StudyHours
	availability.Notes = req.Notes

	if err := s.repo.Upsert(ctx, availability); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save availability")
	}
	return availability, nil
}

// AddBlockedPeriod validates and appends one custom blackout window. The
// append happens server-side in a single statement, so concurrent edits from
// two sessions cannot overwrite each other.
func (s *AvailabilityService) AddBlockedPeriod(ctx context.Context, athleteID string, req AddBlockedPeriodRequest) (*models.CustomBlockedPeriod, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid blocked period payload")
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must use YYYY-MM-DD format")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must use YYYY-MM-DD format")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	period := models.CustomBlockedPeriod{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal([]models.CustomBlockedPeriod{period})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode blocked period")
	}

	updated, err := s.repo.AppendBlockedPeriod(ctx, athleteID, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add blocked period")
	}
	if !updated {
		// No availability row yet; seed defaults and retry once.
		defaults := models.DefaultAvailability(athleteID)
		if err := s.repo.Upsert(ctx, &defaults); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise availability")
		}
		if _, err := s.repo.AppendBlockedPeriod(ctx, athleteID, payload); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add blocked period")
		}
	}
	return &period, nil
}

// RemoveBlockedPeriod deletes one custom blackout window by ID.
func (s *AvailabilityService) RemoveBlockedPeriod(ctx context.Context, athleteID, periodID string) error {
	if athleteID == "" || periodID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "athleteId and periodId are required")
	}

	availability, err := s.repo.GetByAthlete(ctx, athleteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "blocked period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	var periods []models.CustomBlockedPeriod
	if len(availability.BlockedPeriods) > 0 {
		if err := json.Unmarshal(availability.BlockedPeriods, &periods); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode blocked periods")
		}
	}
	found := false
	for _, p := range periods {
		if p.ID == periodID {
			found = true
			break
		}
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "blocked period not found")
	}

	if _, err := s.repo.RemoveBlockedPeriod(ctx, athleteID, periodID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove blocked period")
	}
	return nil
}

// GetUpcomingBlockingEvents returns the school's no-NIL events starting soon,
// minus event types the athlete has opted back into.
func (s *AvailabilityService) GetUpcomingBlockingEvents(ctx context.Context, athleteID string, days int) ([]models.AcademicEvent, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if days <= 0 {
		days = s.cfg.BlockingEventsDays
	}

	availability, err := s.GetAvailability(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, days)
	events, err := s.repo.UpcomingBlockingEvents(ctx, athleteID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocking events")
	}

	filtered := make([]models.AcademicEvent, 0, len(events))
	for _, event := range events {
		if event.EventType == models.EventFinals && !availability.NoFinalsDeals {
			continue
		}
		if event.EventType == models.EventMidterms && !availability.NoMidtermsDeals {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered, nil
}

// GetAvailabilitySummary fans out the preference, blocked-period and
// suggestion queries concurrently. Each section degrades independently; a
// failed branch yields a warning instead of failing the whole view.
func (s *AvailabilityService) GetAvailabilitySummary(ctx context.Context, athleteID string) (*models.AvailabilitySummary, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if err := s.ensureAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	summary := &models.AvailabilitySummary{
		BlockedPeriods: []models.BlockedPeriod{},
		SuggestedDates: []models.SuggestedDate{},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	warn := func(branch string, err error) {
		s.logger.Warn("availability summary branch failed",
			zap.String("athlete_id", athleteID), zap.String("branch", branch), zap.Error(err))
		mu.Lock()
		summary.Warnings = append(summary.Warnings, branch+" unavailable")
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		availability, err := s.GetAvailability(ctx, athleteID)
		if err != nil {
			warn("preferences", err)
			defaults := models.DefaultAvailability(athleteID)
			availability = &defaults
		}
		mu.Lock()
		summary.Preferences = *availability
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		start := time.Now().UTC().Truncate(24 * time.Hour)
		periods, err := s.repo.GetBlockedPeriods(ctx, athleteID, start, start.AddDate(0, 0, s.cfg.BlockedWindowDays))
		if err != nil {
			warn("blocked_periods", err)
			return
		}
		mu.Lock()
		if periods != nil {
			summary.BlockedPeriods = periods
		}
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		dates, err := s.repo.SuggestDealTiming(ctx, athleteID, s.cfg.SuggestWindowDays)
		if err != nil {
			warn("suggested_dates", err)
			return
		}
		sort.SliceStable(dates, func(i, j int) bool {
			if dates[i].Availability != dates[j].Availability {
				return dates[i].Availability > dates[j].Availability
			}
			return dates[i].Date.Before(dates[j].Date)
		})
		mu.Lock()
		if dates != nil {
			summary.SuggestedDates = dates
		}
		mu.Unlock()
	}()
	wg.Wait()

	sort.Strings(summary.Warnings)
	return summary, nil
}

func (s *AvailabilityService) ensureAthlete(ctx context.Context, athleteID string) error {
	if _, err := s.athletes.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrAthleteNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load athlete")
	}
	return nil
}

func normalizeDays(days []string) ([]string, error) {
	valid := make(map[string]bool, len(models.Weekdays))
	for _, d := range models.Weekdays {
		valid[d] = true
	}

	normalized := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	var invalid []string
	for _, day := range days {
		lowered := strings.ToLower(strings.TrimSpace(day))
		if !valid[lowered] {
			invalid = append(invalid, fmt.Sprintf("%q", day))
			continue
		}
		if seen[lowered] {
			continue
		}
		seen[lowered] = true
		normalized = append(normalized, lowered)
	}
	if len(invalid) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("invalid preferred days %s; valid days are %s", strings.Join(invalid, ", "), strings.Join(models.Weekdays, ", ")))
	}
	return normalized, nil
}
