package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type calendarRepoStub struct {
	events     map[string]*models.AcademicEvent
	created    *models.AcademicEvent
	updated    *models.AcademicEvent
	deleted    []string
	listRows   []models.AcademicEvent
	listTotal  int
	lastFilter models.CalendarFilter
}

func (s *calendarRepoStub) Create(ctx context.Context, event *models.AcademicEvent) error {
	event.ID = "event-new"
	s.created = event
	return nil
}

func (s *calendarRepoStub) GetByID(ctx context.Context, id string) (*models.AcademicEvent, error) {
	if event, ok := s.events[id]; ok {
		copied := *event
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *calendarRepoStub) Update(ctx context.Context, event *models.AcademicEvent) error {
	s.updated = event
	return nil
}

func (s *calendarRepoStub) Delete(ctx context.Context, id string) (bool, error) {
	s.deleted = append(s.deleted, id)
	_, ok := s.events[id]
	return ok, nil
}

func (s *calendarRepoStub) List(ctx context.Context, filter models.CalendarFilter) ([]models.AcademicEvent, int, error) {
	s.lastFilter = filter
	return s.listRows, s.listTotal, nil
}

func newCalendarService(repo *calendarRepoStub) *CalendarService {
	return NewCalendarService(repo, nil, zap.NewNop())
}

func validEventRequest() AcademicEventRequest {
	return AcademicEventRequest{
		EventType:    "finals",
		Name:         "Spring Finals",
		StartDate:    "2026-05-04",
		EndDate:      "2026-05-08",
		AcademicYear: "2025-2026",
		Semester:     "spring",
	}
}

func TestCreateEventNormalizesEnums(t *testing.T) {
	repo := &calendarRepoStub{}
	svc := newCalendarService(repo)

	req := validEventRequest()
	req.EventType = " FINALS "
	req.Semester = "Spring"
	req.NoNILActivity = true

	event, err := svc.CreateEvent(context.Background(), "school-1", "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.EventFinals, event.EventType)
	assert.Equal(t, models.SemesterSpring, event.Semester)
	assert.Equal(t, "school-1", event.SchoolID)
	assert.Equal(t, "user-1", event.CreatedBy)
	assert.True(t, event.NoNILActivity)
	require.NotNil(t, repo.created)
}

func TestCreateEventRejectsUnknownType(t *testing.T) {
	svc := newCalendarService(&calendarRepoStub{})

	req := validEventRequest()
	req.EventType = "holiday"

	_, err := svc.CreateEvent(context.Background(), "school-1", "user-1", req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "holiday")
}

func TestCreateEventRejectsInvertedDates(t *testing.T) {
	svc := newCalendarService(&calendarRepoStub{})

	req := validEventRequest()
	req.StartDate = "2026-05-08"
	req.EndDate = "2026-05-04"

	_, err := svc.CreateEvent(context.Background(), "school-1", "user-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateEventPreservesOwnership(t *testing.T) {
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := &calendarRepoStub{events: map[string]*models.AcademicEvent{
		"event-1": {ID: "event-1", SchoolID: "school-1", CreatedBy: "user-1", CreatedAt: created},
	}}
	svc := newCalendarService(repo)

	req := validEventRequest()
	req.Name = "Updated Finals"

	event, err := svc.UpdateEvent(context.Background(), "school-1", "event-1", req)
	require.NoError(t, err)
	assert.Equal(t, "event-1", event.ID)
	assert.Equal(t, "school-1", event.SchoolID)
	assert.Equal(t, "user-1", event.CreatedBy)
	assert.Equal(t, created, event.CreatedAt)
	assert.Equal(t, "Updated Finals", event.Name)
	require.NotNil(t, repo.updated)
}

func TestUpdateEventForeignSchool(t *testing.T) {
	repo := &calendarRepoStub{events: map[string]*models.AcademicEvent{
		"event-1": {ID: "event-1", SchoolID: "school-2"},
	}}
	svc := newCalendarService(repo)

	_, err := svc.UpdateEvent(context.Background(), "school-1", "event-1", validEventRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeleteEventUnknownID(t *testing.T) {
	svc := newCalendarService(&calendarRepoStub{})

	err := svc.DeleteEvent(context.Background(), "school-1", "event-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteEventScoped(t *testing.T) {
	repo := &calendarRepoStub{events: map[string]*models.AcademicEvent{
		"event-1": {ID: "event-1", SchoolID: "school-1"},
	}}
	svc := newCalendarService(repo)

	require.NoError(t, svc.DeleteEvent(context.Background(), "school-1", "event-1"))
	assert.Equal(t, []string{"event-1"}, repo.deleted)
}

func TestListEventsClampsPaging(t *testing.T) {
	repo := &calendarRepoStub{listTotal: 3}
	svc := newCalendarService(repo)

	events, pagination, err := svc.ListEvents(context.Background(), models.CalendarFilter{
		SchoolID: "school-1",
		Page:     0,
		PageSize: 500,
	})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
}

func TestListEventsRejectsUnknownTypeFilter(t *testing.T) {
	svc := newCalendarService(&calendarRepoStub{})

	_, _, err := svc.ListEvents(context.Background(), models.CalendarFilter{
		SchoolID:   "school-1",
		EventTypes: []models.AcademicEventType{"festival"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
