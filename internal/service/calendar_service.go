package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type calendarRepository interface {
	Create(ctx context.Context, event *models.AcademicEvent) error
	GetByID(ctx context.Context, id string) (*models.AcademicEvent, error)
	Update(ctx context.Context, event *models.AcademicEvent) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.CalendarFilter) ([]models.AcademicEvent, int, error)
}

// AcademicEventRequest carries the mutable academic event fields.
type AcademicEventRequest struct {
	EventType     string `json:"event_type" validate:"required"`
	Name          string `json:"name" validate:"required,max=160"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date" validate:"required"`
	NoNILActivity bool   `json:"no_nil_activity"`
	AcademicYear  string `json:"academic_year" validate:"required,max=16"`
	Semester      string `json:"semester" validate:"required"`
}

var validEventTypes = []models.AcademicEventType{
	models.EventFinals, models.EventMidterms, models.EventBreak,
	models.EventGraduation, models.EventRegistration, models.EventOther,
}

var validSemesters = []models.Semester{
	models.SemesterFall, models.SemesterSpring, models.SemesterSummer, models.SemesterWinter,
}

// CalendarService manages school academic calendars used by the availability
// stored procedures.
type CalendarService struct {
	repo      calendarRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// CreateEvent validates and stores a new academic event.
func (s *CalendarService) CreateEvent(ctx context.Context, schoolID, createdBy string, req AcademicEventRequest) (*models.AcademicEvent, error) {
	if schoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolId is required")
	}
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.SchoolID = schoolID
	event.CreatedBy = createdBy

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic event")
	}
	s.logger.Info("academic event created",
		zap.String("event_id", event.ID), zap.String("school_id", schoolID), zap.String("type", string(event.EventType)))
	return event, nil
}

// UpdateEvent validates and rewrites an existing event. School scoping is
// enforced so an admin cannot edit another school's calendar.
func (s *CalendarService) UpdateEvent(ctx context.Context, schoolID, eventID string, req AcademicEventRequest) (*models.AcademicEvent, error) {
	existing, err := s.getScoped(ctx, schoolID, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.SchoolID = existing.SchoolID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic event")
	}
	return updated, nil
}

// DeleteEvent removes an event owned by the school.
func (s *CalendarService) DeleteEvent(ctx context.Context, schoolID, eventID string) error {
	if _, err := s.getScoped(ctx, schoolID, eventID); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, eventID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic event")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "academic event not found")
	}
	return nil
}

// ListEvents returns a school's events with pagination metadata.
func (s *CalendarService) ListEvents(ctx context.Context, filter models.CalendarFilter) ([]models.AcademicEvent, *models.Pagination, error) {
	if filter.SchoolID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "schoolId is required")
	}
	for _, eventType := range filter.EventTypes {
		if !isValidEventType(eventType) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown event type %q", eventType))
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic events")
	}
	if events == nil {
		events = []models.AcademicEvent{}
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

func (s *CalendarService) getScoped(ctx context.Context, schoolID, eventID string) (*models.AcademicEvent, error) {
	if schoolID == "" || eventID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolId and eventId are required")
	}
	existing, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic event")
	}
	if existing.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event belongs to another school")
	}
	return existing, nil
}

func (s *CalendarService) buildEvent(req AcademicEventRequest) (*models.AcademicEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic event payload")
	}

	eventType := models.AcademicEventType(strings.ToLower(strings.TrimSpace(req.EventType)))
	if !isValidEventType(eventType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown event type %q", req.EventType))
	}
	semester := models.Semester(strings.ToLower(strings.TrimSpace(req.Semester)))
	if !isValidSemester(semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", req.Semester))
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

	return &models.AcademicEvent{
		EventType:     eventType,
		Name:          strings.TrimSpace(req.Name),
		StartDate:     start,
		EndDate:       end,
		NoNILActivity: req.NoNILActivity,
		AcademicYear:  strings.TrimSpace(req.AcademicYear),
		Semester:      semester,
	}, nil
}

func isValidEventType(eventType models.AcademicEventType) bool {
	for _, t := range validEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

func isValidSemester(semester models.Semester) bool {
	for _, s := range validSemesters {
		if s == semester {
			return true
		}
	}
	return false
}
