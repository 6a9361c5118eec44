package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/internal/service"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
	"github.com/gradeup-app/gradeup-api/pkg/response"
)

// CalendarHandler exposes school academic calendar endpoints.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// List godoc
// @Summary List a school's academic events
// @Tags Calendar
// @Produce json
// @Param id path string true "School ID"
// @Param startDate query string false "Window start (YYYY-MM-DD)"
// @Param endDate query string false "Window end (YYYY-MM-DD)"
// @Param eventTypes query string false "Comma-separated event types"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	filter := models.CalendarFilter{
		SchoolID: c.Param("id"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("startDate"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "startDate must use YYYY-MM-DD format"))
			return
		}
		filter.StartDate = &parsed
	}
	if raw := c.Query("endDate"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "endDate must use YYYY-MM-DD format"))
			return
		}
		filter.EndDate = &parsed
	}
	for _, eventType := range splitCSV(c.Query("eventTypes")) {
		filter.EventTypes = append(filter.EventTypes, models.AcademicEventType(eventType))
	}

	events, pagination, err := h.calendar.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Create godoc
// @Summary Create an academic event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body service.AcademicEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /schools/{id}/calendar [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AcademicEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.calendar.CreateEvent(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an academic event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param eventId path string true "Event ID"
// @Param payload body service.AcademicEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/calendar/{eventId} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	var req service.AcademicEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.calendar.UpdateEvent(c.Request.Context(), c.Param("id"), c.Param("eventId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an academic event
// @Tags Calendar
// @Produce json
// @Param id path string true "School ID"
// @Param eventId path string true "Event ID"
// @Success 204 {object} response.Envelope
// @Router /schools/{id}/calendar/{eventId} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.calendar.DeleteEvent(c.Request.Context(), c.Param("id"), c.Param("eventId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
