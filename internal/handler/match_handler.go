package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/internal/service"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
	"github.com/gradeup-app/gradeup-api/pkg/jobs"
	"github.com/gradeup-app/gradeup-api/pkg/response"
)

// MatchHandler exposes the match scoring and discovery endpoints.
type MatchHandler struct {
	matches    *service.MatchService
	auth       *service.AuthService
	recalcJobs *jobs.Queue
}

// NewMatchHandler constructs handler.
func NewMatchHandler(matches *service.MatchService, auth *service.AuthService, recalcJobs *jobs.Queue) *MatchHandler {
	return &MatchHandler{matches: matches, auth: auth, recalcJobs: recalcJobs}
}

// Calculate godoc
// @Summary Calculate match score for one athlete/brand pair
// @Tags Matches
// @Accept json
// @Produce json
// @Param payload body object true "Pair payload"
// @Success 200 {object} response.Envelope
// @Router /matches/calculate [post]
func (h *MatchHandler) Calculate(c *gin.Context) {
	var req struct {
		AthleteID string `json:"athlete_id" binding:"required"`
		BrandID   string `json:"brand_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	score, err := h.matches.CalculateMatchScore(c.Request.Context(), req.AthleteID, req.BrandID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"athlete_id": req.AthleteID, "brand_id": req.BrandID, "match_score": score}, nil)
}

// TopMatches godoc
// @Summary Top brand matches for an athlete
// @Tags Matches
// @Produce json
// @Param id path string true "Athlete ID"
// @Param minScore query int false "Minimum match score"
// @Param industries query string false "Comma-separated industry tags"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/matches/top [get]
func (h *MatchHandler) TopMatches(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}

	filter := models.TopMatchFilter{}
	if raw := c.Query("minScore"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minScore must be an integer"))
			return
		}
		filter.MinScore = &minScore
	}
	if raw := c.Query("industries"); raw != "" {
		filter.Industries = splitCSV(raw)
	}
	filter.Limit = queryInt(c, "limit", 0)

	matches, err := h.matches.GetTopMatches(c.Request.Context(), athleteID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// MatchingAthletes godoc
// @Summary Candidate athletes for a brand
// @Tags Matches
// @Produce json
// @Param id path string true "Brand ID"
// @Param minGpa query number false "Minimum GPA"
// @Param sports query string false "Comma-separated sports"
// @Param schools query string false "Comma-separated school IDs"
// @Param divisions query string false "Comma-separated divisions"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /brands/{id}/matching-athletes [get]
func (h *MatchHandler) MatchingAthletes(c *gin.Context) {
	brandID := c.Param("id")
	if err := authorizeBrandScope(c, h.auth, brandID); err != nil {
		response.Error(c, err)
		return
	}

	filter := models.AthleteMatchFilter{}
	if raw := c.Query("minGpa"); raw != "" {
		minGPA, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minGpa must be a number"))
			return
		}
		filter.MinGPA = &minGPA
	}
	filter.Sports = splitCSV(c.Query("sports"))
	filter.Schools = splitCSV(c.Query("schools"))
	filter.Divisions = splitCSV(c.Query("divisions"))

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 20)

	athletes, pagination, err := h.matches.GetMatchingAthletes(c.Request.Context(), brandID, filter, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, athletes, pagination)
}

// Stats godoc
// @Summary Match score statistics for an athlete
// @Tags Matches
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} response.Envelope
// @Router /athletes/{id}/matches/stats [get]
func (h *MatchHandler) Stats(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.matches.GetMatchStats(c.Request.Context(), athleteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ByIndustry godoc
// @Summary Find athletes whose majors feed the given industries
// @Tags Matches
// @Produce json
// @Param industries query string true "Comma-separated industry tags"
// @Param minGpa query number false "Minimum GPA"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /matches/athletes-by-industry [get]
func (h *MatchHandler) ByIndustry(c *gin.Context) {
	industries := splitCSV(c.Query("industries"))
	if len(industries) == 0 {
		// Single-value form kept for older clients.
		industries = splitCSV(c.Query("industry"))
	}
	if len(industries) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "industries required"))
		return
	}
	var minGPA *float64
	if raw := c.Query("minGpa"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minGpa must be a number"))
			return
		}
		minGPA = &parsed
	}
	limit := queryInt(c, "limit", 20)

	athletes, err := h.matches.FindAthletesByIndustry(c.Request.Context(), industries, minGPA, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, athletes, nil)
}

// RecalculateAthlete godoc
// @Summary Queue a recompute of the athlete's scores against all verified brands
// @Tags Matches
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 202 {object} response.Envelope
// @Router /athletes/{id}/matches/recalculate [post]
func (h *MatchHandler) RecalculateAthlete(c *gin.Context) {
	athleteID := c.Param("id")
	if err := authorizeAthleteScope(c, h.auth, athleteID); err != nil {
		response.Error(c, err)
		return
	}
	h.enqueueRecalc(c, service.RecalcJobPayload{AthleteID: athleteID}, "athlete_recalc")
}

// RecalculateBrand godoc
// @Summary Queue a recompute of the brand's scores against all candidate athletes
// @Tags Matches
// @Produce json
// @Param id path string true "Brand ID"
// @Success 202 {object} response.Envelope
// @Router /brands/{id}/matches/recalculate [post]
func (h *MatchHandler) RecalculateBrand(c *gin.Context) {
	brandID := c.Param("id")
	if err := authorizeBrandScope(c, h.auth, brandID); err != nil {
		response.Error(c, err)
		return
	}
	h.enqueueRecalc(c, service.RecalcJobPayload{BrandID: brandID}, "brand_recalc")
}

func (h *MatchHandler) enqueueRecalc(c *gin.Context, payload service.RecalcJobPayload, jobType string) {
	job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: payload}
	if err := h.recalcJobs.Enqueue(job); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue recalculation"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"job_id": job.ID, "status": "queued"}, nil)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
