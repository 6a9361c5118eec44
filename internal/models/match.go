package models

import "time"

// MatchScore is one precomputed compatibility row per (athlete, brand) pair.
// The scoring procedure owns writes; score is always within [0,100].
type MatchScore struct {
	AthleteID     string    `db:"athlete_id" json:"athlete_id"`
	BrandID       string    `db:"brand_id" json:"brand_id"`
	Score         int       `db:"match_score" json:"match_score"`
	MajorMatch    bool      `db:"major_match" json:"major_match"`
	IndustryMatch bool      `db:"industry_match" json:"industry_match"`
	ValuesMatch   bool      `db:"values_match" json:"values_match"`
	CalculatedAt  time.Time `db:"calculated_at" json:"calculated_at"`
}

// TopMatch joins a match row with the brand summary shown to athletes.
type TopMatch struct {
	MatchScore
	BrandName     string  `db:"brand_name" json:"brand_name"`
	BrandIndustry string  `db:"brand_industry" json:"brand_industry"`
	BrandLogoURL  *string `db:"brand_logo_url" json:"brand_logo_url,omitempty"`
	BrandVerified bool    `db:"brand_verified" json:"brand_verified"`
}

// AthleteMatch joins a match row with the athlete summary shown to brands.
type AthleteMatch struct {
	MatchScore
	AthleteName   string   `db:"athlete_name" json:"athlete_name"`
	Sport         string   `db:"sport" json:"sport"`
	SchoolID      string   `db:"school_id" json:"school_id"`
	SchoolName    string   `db:"school_name" json:"school_name"`
	Division      string   `db:"division" json:"division"`
	GPA           *float64 `db:"gpa" json:"gpa,omitempty"`
	CumulativeGPA *float64 `db:"cumulative_gpa" json:"cumulative_gpa,omitempty"`
	GradeupScore  float64  `db:"gradeup_score" json:"gradeup_score"`
}

// EffectiveGPA prefers the cumulative GPA, falling back to the term GPA.
func (m AthleteMatch) EffectiveGPA() float64 {
	if m.CumulativeGPA != nil {
		return *m.CumulativeGPA
	}
	if m.GPA != nil {
		return *m.GPA
	}
	return 0
}

// TopMatchFilter narrows an athlete's top-match query.
type TopMatchFilter struct {
	MinScore   *int
	Industries []string
	Limit      int
}

// AthleteMatchFilter narrows a brand's candidate query.
type AthleteMatchFilter struct {
	MinGPA    *float64
	Sports    []string
	Schools   []string
	Divisions []string
	Limit     int
	Offset    int
}

// MatchStats aggregates an athlete's match rows into score buckets.
// HighMatches+MediumMatches+LowMatches always equals TotalMatches.
type MatchStats struct {
	TotalMatches    int `json:"total_matches"`
	HighMatches     int `json:"high_matches"`
	MediumMatches   int `json:"medium_matches"`
	LowMatches      int `json:"low_matches"`
	MajorMatches    int `json:"major_matches"`
	IndustryMatches int `json:"industry_matches"`
	AverageScore    int `json:"average_score"`
}

// RecalcFailure records one counterpart that failed during bulk recompute.
type RecalcFailure struct {
	CounterpartID string `json:"counterpart_id"`
	Reason        string `json:"reason"`
}

// RecalcReport summarises a bulk recompute batch.
type RecalcReport struct {
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
	Failures  []RecalcFailure `json:"failures,omitempty"`
}
