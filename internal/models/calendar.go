package models

import "time"

// AcademicEventType enumerates academic calendar entry categories.
type AcademicEventType string

const (
	EventFinals       AcademicEventType = "finals"
	EventMidterms     AcademicEventType = "midterms"
	EventBreak        AcademicEventType = "break"
	EventGraduation   AcademicEventType = "graduation"
	EventRegistration AcademicEventType = "registration"
	EventOther        AcademicEventType = "other"
)

// Semester enumerates academic semesters.
type Semester string

const (
	SemesterFall   Semester = "fall"
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
	SemesterWinter Semester = "winter"
)

// AcademicEvent is a school calendar entry maintained by athletic directors.
// Invariant: StartDate <= EndDate.
type AcademicEvent struct {
	ID            string            `db:"id" json:"id"`
	SchoolID      string            `db:"school_id" json:"school_id"`
	EventType     AcademicEventType `db:"event_type" json:"event_type"`
	Name          string            `db:"name" json:"name"`
	StartDate     time.Time         `db:"start_date" json:"start_date"`
	EndDate       time.Time         `db:"end_date" json:"end_date"`
	NoNILActivity bool              `db:"no_nil_activity" json:"no_nil_activity"`
	AcademicYear  string            `db:"academic_year" json:"academic_year"`
	Semester      Semester          `db:"semester" json:"semester"`
	CreatedBy     string            `db:"created_by" json:"created_by"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// CalendarFilter narrows down academic events.
type CalendarFilter struct {
	SchoolID   string
	StartDate  *time.Time
	EndDate    *time.Time
	EventTypes []AcademicEventType
	Page       int
	PageSize   int
}
