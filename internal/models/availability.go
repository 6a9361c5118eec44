package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Weekdays is the closed set of accepted preferred_deal_days values.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// CustomBlockedPeriod is one athlete-defined blackout window, stored inside
// the blocked_periods jsonb array.
type CustomBlockedPeriod struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// AthleteAvailability is the single logical availability record per athlete.
type AthleteAvailability struct {
	ID               string         `db:"id" json:"id"`
	AthleteID        string         `db:"athlete_id" json:"athlete_id"`
	BlockedPeriods   types.JSONText `db:"blocked_periods" json:"blocked_periods"`
	StudyHours       *string        `db:"study_hours" json:"study_hours,omitempty"`
	MaxDealsPerMonth int            `db:"max_deals_per_month" json:"max_deals_per_month"`
	NoFinalsDeals    bool           `db:"no_finals_deals" json:"no_finals_deals"`
	NoMidtermsDeals  bool           `db:"no_midterms_deals" json:"no_midterms_deals"`
	PreferredDays    pq.StringArray `db:"preferred_deal_days" json:"preferred_deal_days"`
	MinNoticeDays    int            `db:"min_notice_days" json:"min_notice_days"`
	MaxHoursPerWeek  int            `db:"max_hours_per_week" json:"max_hours_per_week"`
	Notes            *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// DefaultAvailability supplies the in-memory defaults used when an athlete
// has never saved preferences.
func DefaultAvailability(athleteID string) AthleteAvailability {
	return AthleteAvailability{
		AthleteID:        athleteID,
		BlockedPeriods:   types.JSONText(`[]`),
		MaxDealsPerMonth: 5,
		NoFinalsDeals:    true,
		NoMidtermsDeals:  true,
		PreferredDays:    pq.StringArray{"friday", "saturday", "sunday"},
		MinNoticeDays:    3,
		MaxHoursPerWeek:  10,
	}
}

// BlockedPeriodSource identifies where a merged blackout window came from.
type BlockedPeriodSource string

const (
	SourceAcademicCalendar  BlockedPeriodSource = "academic_calendar"
	SourceAthletePreference BlockedPeriodSource = "athlete_preference"
)

// BlockedPeriod is the read-only merged blackout view returned by
// get_athlete_blocked_periods; it is never persisted as-is.
type BlockedPeriod struct {
	PeriodType string              `db:"period_type" json:"period_type"`
	Name       string              `db:"name" json:"name"`
	StartDate  time.Time           `db:"start_date" json:"start_date"`
	EndDate    time.Time           `db:"end_date" json:"end_date"`
	Source     BlockedPeriodSource `db:"source" json:"source"`
}

// SuggestedDate is one ranked candidate returned by suggest_deal_timing.
type SuggestedDate struct {
	Date         time.Time `db:"suggested_date" json:"date"`
	DayOfWeek    string    `db:"day_of_week" json:"day_of_week"`
	IsPreferred  bool      `db:"is_preferred_day" json:"is_preferred_day"`
	Availability int       `db:"availability_score" json:"availability_score"`
}

// AvailabilityCheck is the outcome of a single-date availability query.
// Reason is advisory only; the stored procedure's verdict is authoritative.
type AvailabilityCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilitySummary composes the read-only athlete availability view.
// Sections degrade independently; Warnings lists the branches that failed.
type AvailabilitySummary struct {
	Preferences    AthleteAvailability `json:"preferences"`
	BlockedPeriods []BlockedPeriod     `json:"blocked_periods"`
	SuggestedDates []SuggestedDate     `json:"suggested_dates"`
	Warnings       []string            `json:"warnings,omitempty"`
}
