package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeup-app/gradeup-api/internal/service"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
	"github.com/gradeup-app/gradeup-api/pkg/response"
)

// TaxonomyHandler exposes the major/industry taxonomy endpoints.
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
	auth     *service.AuthService
}

// NewTaxonomyHandler constructs handler.
func NewTaxonomyHandler(taxonomy *service.TaxonomyService, auth *service.AuthService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy, auth: auth}
}

// MajorCategories godoc
// @Summary List major categories with their industry tags
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /taxonomy/major-categories [get]
func (h *TaxonomyHandler) MajorCategories(c *gin.Context) {
	categories, err := h.taxonomy.ListMajorCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// IndustryMap godoc
// @Summary Industry-to-major-categories reference map
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /taxonomy/industry-map [get]
func (h *TaxonomyHandler) IndustryMap(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.taxonomy.GetIndustryMap(c.Request.Context()), nil)
}

// BrandIndustries godoc
// @Summary List a brand's industries, primary first
// @Tags Taxonomy
// @Produce json
// @Param id path string true "Brand ID"
// @Success 200 {object} response.Envelope
// @Router /brands/{id}/industries [get]
func (h *TaxonomyHandler) BrandIndustries(c *gin.Context) {
	rows, err := h.taxonomy.GetBrandIndustries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReplaceBrandIndustries godoc
// @Summary Replace a brand's industry set
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param id path string true "Brand ID"
// @Param payload body []service.BrandIndustryInput true "Industry entries"
// @Success 200 {object} response.Envelope
// @Router /brands/{id}/industries [put]
func (h *TaxonomyHandler) ReplaceBrandIndustries(c *gin.Context) {
	brandID := c.Param("id")
	if err := authorizeBrandScope(c, h.auth, brandID); err != nil {
		response.Error(c, err)
		return
	}
	var inputs []service.BrandIndustryInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid industries payload"))
		return
	}
	rows, err := h.taxonomy.SetBrandIndustries(c.Request.Context(), brandID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// AddBrandIndustry godoc
// @Summary Append one industry to a brand
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param id path string true "Brand ID"
// @Param payload body service.BrandIndustryInput true "Industry entry"
// @Success 201 {object} response.Envelope
// @Router /brands/{id}/industries [post]
func (h *TaxonomyHandler) AddBrandIndustry(c *gin.Context) {
	brandID := c.Param("id")
	if err := authorizeBrandScope(c, h.auth, brandID); err != nil {
		response.Error(c, err)
		return
	}
	var input service.BrandIndustryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid industry payload"))
		return
	}
	row, err := h.taxonomy.AddBrandIndustry(c.Request.Context(), brandID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// RemoveBrandIndustry godoc
// @Summary Remove one industry from a brand
// @Tags Taxonomy
// @Produce json
// @Param id path string true "Brand ID"
// @Param industryId path string true "Brand industry row ID"
// @Success 204 {object} response.Envelope
// @Router /brands/{id}/industries/{industryId} [delete]
func (h *TaxonomyHandler) RemoveBrandIndustry(c *gin.Context) {
	brandID := c.Param("id")
	if err := authorizeBrandScope(c, h.auth, brandID); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.taxonomy.RemoveBrandIndustry(c.Request.Context(), brandID, c.Param("industryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
