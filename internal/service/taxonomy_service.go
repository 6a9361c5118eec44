package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type taxonomyRepository interface {
	ListMajorCategories(ctx context.Context) ([]models.MajorCategory, error)
	FindCategoryIDsByIndustries(ctx context.Context, industries []string) ([]string, error)
	ListBrandIndustries(ctx context.Context, brandID string) ([]models.BrandIndustry, error)
	ReplaceBrandIndustries(ctx context.Context, brandID string, rows []models.BrandIndustry) error
	AddBrandIndustry(ctx context.Context, row *models.BrandIndustry) error
	RemoveBrandIndustry(ctx context.Context, brandID, id string) (bool, error)
}

// BrandIndustryInput is one industry entry in a replace payload.
type BrandIndustryInput struct {
	Industry  string `json:"industry" validate:"required"`
	IsPrimary bool   `json:"is_primary"`
}

// TaxonomyService owns the major/industry taxonomy and brand industry links.
// It keeps an in-memory copy of the industry-to-category map, refreshed on a
// TTL, with the compiled seed as a cold-start fallback.
type TaxonomyService struct {
	repo      taxonomyRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.TaxonomyConfig

	mu          sync.RWMutex
	byIndustry  map[string][]string
	refreshedAt time.Time
}

// NewTaxonomyService constructs a TaxonomyService.
func NewTaxonomyService(repo taxonomyRepository, validate *validator.Validate, logger *zap.Logger, cfg config.TaxonomyConfig) *TaxonomyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	return &TaxonomyService{repo: repo, validator: validate, logger: logger, cfg: cfg}
}

// ListMajorCategories returns the canonical taxonomy.
func (s *TaxonomyService) ListMajorCategories(ctx context.Context) ([]models.MajorCategory, error) {
	categories, err := s.repo.ListMajorCategories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list major categories")
	}
	if categories == nil {
		categories = []models.MajorCategory{}
	}
	return categories, nil
}

// CategoryIDsForIndustries resolves industry tags to the IDs of major
// categories that feed any of them, preferring the database over the cached
// map. Tags are lowercased and deduplicated before the lookup.
func (s *TaxonomyService) CategoryIDsForIndustries(ctx context.Context, industries []string) ([]string, error) {
	normalized := make([]string, 0, len(industries))
	seen := make(map[string]bool, len(industries))
	for _, industry := range industries {
		industry = strings.ToLower(strings.TrimSpace(industry))
		if industry == "" || seen[industry] {
			continue
		}
		seen[industry] = true
		normalized = append(normalized, industry)
	}
	if len(normalized) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one industry is required")
	}

	ids, err := s.repo.FindCategoryIDsByIndustries(ctx, normalized)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve industry categories")
	}
	return ids, nil
}

// GetIndustryMap returns the industry-to-major-categories reference map from
// the TTL-cached copy, falling back to the compiled seed when the database
// has never been reachable.
func (s *TaxonomyService) GetIndustryMap(ctx context.Context) map[string][]string {
	s.ensureFresh(ctx)
	s.mu.RLock()
	if len(s.byIndustry) > 0 {
		// Copy so callers cannot mutate the shared cache.
		copied := make(map[string][]string, len(s.byIndustry))
		for tag, majors := range s.byIndustry {
			copied[tag] = append([]string(nil), majors...)
		}
		s.mu.RUnlock()
		return copied
	}
	s.mu.RUnlock()

	seeded := make(map[string][]string)
	for major, industries := range models.MajorIndustrySeed {
		for _, tag := range industries {
			seeded[tag] = append(seeded[tag], major)
		}
	}
	return seeded
}

// GetBrandIndustries lists a brand's industry rows, primary first.
func (s *TaxonomyService) GetBrandIndustries(ctx context.Context, brandID string) ([]models.BrandIndustry, error) {
	if brandID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brandId is required")
	}
	rows, err := s.repo.ListBrandIndustries(ctx, brandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list brand industries")
	}
	if rows == nil {
		rows = []models.BrandIndustry{}
	}
	return rows, nil
}

// SetBrandIndustries replaces a brand's industry set transactionally. At most
// one entry may be primary; when several are flagged, the first wins and the
// rest are demoted. When none is flagged, the first entry becomes primary.
func (s *TaxonomyService) SetBrandIndustries(ctx context.Context, brandID string, inputs []BrandIndustryInput) ([]models.BrandIndustry, error) {
	if brandID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brandId is required")
	}
	if len(inputs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one industry is required")
	}
	if len(inputs) > 10 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at most 10 industries are allowed")
	}

	rows := make([]models.BrandIndustry, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	primarySet := false
	for _, input := range inputs {
		if err := s.validator.Struct(input); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid industry entry")
		}
		industry := strings.ToLower(strings.TrimSpace(input.Industry))
		if !isKnownIndustry(industry) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("unknown industry %q; valid industries are %s", input.Industry, strings.Join(models.Industries, ", ")))
		}
		if seen[industry] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate industry %q", industry))
		}
		seen[industry] = true

		isPrimary := input.IsPrimary && !primarySet
		if isPrimary {
			primarySet = true
		}
		rows = append(rows, models.BrandIndustry{Industry: industry, IsPrimary: isPrimary})
	}
	if !primarySet {
		rows[0].IsPrimary = true
	}

	if err := s.repo.ReplaceBrandIndustries(ctx, brandID, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save brand industries")
	}
	return rows, nil
}

// AddBrandIndustry appends one industry; flagging it primary demotes the
// previous primary in the same transaction.
func (s *TaxonomyService) AddBrandIndustry(ctx context.Context, brandID string, input BrandIndustryInput) (*models.BrandIndustry, error) {
	if brandID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brandId is required")
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid industry entry")
	}
	industry := strings.ToLower(strings.TrimSpace(input.Industry))
	if !isKnownIndustry(industry) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unknown industry %q; valid industries are %s", input.Industry, strings.Join(models.Industries, ", ")))
	}

	existing, err := s.repo.ListBrandIndustries(ctx, brandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list brand industries")
	}
	for _, row := range existing {
		if row.Industry == industry {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("industry %q already linked", industry))
		}
	}

	row := &models.BrandIndustry{
		BrandID:   brandID,
		Industry:  industry,
		IsPrimary: input.IsPrimary || len(existing) == 0,
	}
	if err := s.repo.AddBrandIndustry(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add brand industry")
	}
	return row, nil
}

// RemoveBrandIndustry deletes one industry row owned by the brand.
func (s *TaxonomyService) RemoveBrandIndustry(ctx context.Context, brandID, id string) error {
	if brandID == "" || id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "brandId and industry id are required")
	}
	removed, err := s.repo.RemoveBrandIndustry(ctx, brandID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove brand industry")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "brand industry not found")
	}
	return nil
}

func (s *TaxonomyService) ensureFresh(ctx context.Context) {
	s.mu.RLock()
	fresh := time.Since(s.refreshedAt) < s.cfg.CacheTTL && s.byIndustry != nil
	s.mu.RUnlock()
	if fresh {
		return
	}

	categories, err := s.repo.ListMajorCategories(ctx)
	if err != nil {
		s.logger.Warn("taxonomy refresh failed, keeping previous map", zap.Error(err))
		return
	}

	byIndustry := make(map[string][]string)
	for _, category := range categories {
		for _, industry := range category.Industries {
			byIndustry[industry] = append(byIndustry[industry], category.Name)
		}
	}

	s.mu.Lock()
	s.byIndustry = byIndustry
	s.refreshedAt = time.Now()
	s.mu.Unlock()
}

func isKnownIndustry(industry string) bool {
	for _, tag := range models.Industries {
		if tag == industry {
			return true
		}
	}
	return false
}
