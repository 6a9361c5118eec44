package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gradeup-app/gradeup-api/internal/service"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
	"github.com/gradeup-app/gradeup-api/pkg/response"
)

const queryDateLayout = "2006-01-02"

// AvailabilityHandler exposes athlete scheduling endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
	auth         *service.AuthService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(availability *service.AvailabilityService, auth *service.AuthService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, auth: auth}
}

// Get godoc
// @Summary Get athlete availability preferences
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	availability, err := h.availability.GetAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Update godoc
// @Summary Replace athlete availability preferences
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Athlete ID"
// @Param payload body service.UpdateAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	availability, err := h.availability.UpdateAvailability(c.Request.Context(), athleteID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Check godoc
// @Summary Check whether the athlete can take a deal on a date
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date required"))
		return
	}
	date, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format"))
		return
	}
	check, err := h.availability.CheckAvailability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check, nil)
}

// BlockedPeriods godoc
// @Summary List merged blocked periods for a window
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Param startDate query string false "Window start (YYYY-MM-DD)"
// @Param endDate query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability/blocked-periods [get]
func (h *AvailabilityHandler) BlockedPeriods(c *gin.Context) {
	var start, end time.Time
	if raw := c.Query("startDate"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "startDate must use YYYY-MM-DD format"))
			return
		}
		start = parsed
	}
	if raw := c.Query("endDate"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "endDate must use YYYY-MM-DD format"))
			return
		}
		end = parsed
	}
	periods, err := h.availability.GetBlockedPeriods(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// AddBlockedPeriod godoc
// @Summary Add a custom blocked period
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Athlete ID"
// @Param payload body service.AddBlockedPeriodRequest true "Blocked period payload"
// @Success 201 {object} response.Envelope
// @Router /athletes/{id}/availability/blocked-periods [post]
func (h *AvailabilityHandler) AddBlockedPeriod(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddBlockedPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid blocked period payload"))
		return
	}
	period, err := h.availability.AddBlockedPeriod(c.Request.Context(), athleteID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// RemoveBlockedPeriod godoc
// @Summary Remove a custom blocked period
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Param periodId path string true "Blocked period ID"
// @Success 204 {object} response.Envelope
// @Router /athletes/{id}/availability/blocked-periods/{periodId} [delete]
func (h *AvailabilityHandler) RemoveBlockedPeriod(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.availability.RemoveBlockedPeriod(c.Request.Context(), athleteID, c.Param("periodId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SuggestTiming godoc
// @Summary Suggest deal dates ranked by availability
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Param withinDays query int false "Lookahead window in days"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability/suggest-timing [get]
func (h *AvailabilityHandler) SuggestTiming(c *gin.Context) {
	dates, err := h.availability.SuggestDealTiming(c.Request.Context(), c.Param("id"), queryInt(c, "withinDays", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}

// BlockingEvents godoc
// @Summary Upcoming no-NIL academic events for the athlete's school
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Param days query int false "Lookahead window in days"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability/blocking-events [get]
func (h *AvailabilityHandler) BlockingEvents(c *gin.Context) {
	events, err := h.availability.GetUpcomingBlockingEvents(c.Request.Context(), c.Param("id"), queryInt(c, "days", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Summary godoc
// @Summary Combined availability view
// @Tags Availability
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/availability/summary [get]
func (h *AvailabilityHandler) Summary(c *gin.Context) {
	summary, err := h.availability.GetAvailabilitySummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
