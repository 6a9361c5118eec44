package models

import "time"

// Athlete is a student-athlete profile.
type Athlete struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	SchoolID        string    `db:"school_id" json:"school_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Sport           string    `db:"sport" json:"sport"`
	Division        string    `db:"division" json:"division"`
	GPA             *float64  `db:"gpa" json:"gpa,omitempty"`
	CumulativeGPA   *float64  `db:"cumulative_gpa" json:"cumulative_gpa,omitempty"`
	MajorCategoryID *string   `db:"major_category_id" json:"major_category_id,omitempty"`
	GradeupScore    float64   `db:"gradeup_score" json:"gradeup_score"`
	IsSearchable    bool      `db:"is_searchable" json:"is_searchable"`
	AcceptingDeals  bool      `db:"accepting_deals" json:"accepting_deals"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveGPA prefers the cumulative GPA, falling back to the term GPA.
func (a Athlete) EffectiveGPA() float64 {
	if a.CumulativeGPA != nil {
		return *a.CumulativeGPA
	}
	if a.GPA != nil {
		return *a.GPA
	}
	return 0
}

// School is read-only reference data joined into athlete views.
type School struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Division string `db:"division" json:"division"`
	State    string `db:"state" json:"state"`
}
