package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type taxonomyRepoStub struct {
	categories    []models.MajorCategory
	categoriesErr error
	categoryIDs   []string
	queried       []string
	brandRows     []models.BrandIndustry
	replaced      []models.BrandIndustry
	added         *models.BrandIndustry
	removeResult  bool
}

func (s *taxonomyRepoStub) ListMajorCategories(ctx context.Context) ([]models.MajorCategory, error) {
	return s.categories, s.categoriesErr
}

func (s *taxonomyRepoStub) FindCategoryIDsByIndustries(ctx context.Context, industries []string) ([]string, error) {
	s.queried = industries
	return s.categoryIDs, nil
}

func (s *taxonomyRepoStub) ListBrandIndustries(ctx context.Context, brandID string) ([]models.BrandIndustry, error) {
	return s.brandRows, nil
}

func (s *taxonomyRepoStub) ReplaceBrandIndustries(ctx context.Context, brandID string, rows []models.BrandIndustry) error {
	s.replaced = rows
	return nil
}

func (s *taxonomyRepoStub) AddBrandIndustry(ctx context.Context, row *models.BrandIndustry) error {
	s.added = row
	return nil
}

func (s *taxonomyRepoStub) RemoveBrandIndustry(ctx context.Context, brandID, id string) (bool, error) {
	return s.removeResult, nil
}

func newTaxonomyService(repo *taxonomyRepoStub) *TaxonomyService {
	return NewTaxonomyService(repo, nil, zap.NewNop(), config.TaxonomyConfig{CacheTTL: time.Minute})
}

func TestSetBrandIndustriesFirstPrimaryWins(t *testing.T) {
	repo := &taxonomyRepoStub{}
	svc := newTaxonomyService(repo)

	rows, err := svc.SetBrandIndustries(context.Background(), "brand-1", []BrandIndustryInput{
		{Industry: "technology"},
		{Industry: "Finance", IsPrimary: true},
		{Industry: "media", IsPrimary: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.False(t, rows[0].IsPrimary)
	assert.True(t, rows[1].IsPrimary)
	assert.False(t, rows[2].IsPrimary)
	assert.Equal(t, "finance", rows[1].Industry)
	assert.Equal(t, rows, repo.replaced)
}

func TestSetBrandIndustriesDefaultsFirstToPrimary(t *testing.T) {
	svc := newTaxonomyService(&taxonomyRepoStub{})

	rows, err := svc.SetBrandIndustries(context.Background(), "brand-1", []BrandIndustryInput{
		{Industry: "fitness"},
		{Industry: "apparel"},
	})
	require.NoError(t, err)
	assert.True(t, rows[0].IsPrimary)
	assert.False(t, rows[1].IsPrimary)
}

func TestSetBrandIndustriesRejectsDuplicates(t *testing.T) {
	svc := newTaxonomyService(&taxonomyRepoStub{})

	_, err := svc.SetBrandIndustries(context.Background(), "brand-1", []BrandIndustryInput{
		{Industry: "technology"},
		{Industry: "TECHNOLOGY"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "duplicate")
}

func TestSetBrandIndustriesRejectsUnknownIndustry(t *testing.T) {
	svc := newTaxonomyService(&taxonomyRepoStub{})

	_, err := svc.SetBrandIndustries(context.Background(), "brand-1", []BrandIndustryInput{
		{Industry: "cryptozoology"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "cryptozoology")
}

func TestSetBrandIndustriesRequiresAtLeastOne(t *testing.T) {
	svc := newTaxonomyService(&taxonomyRepoStub{})

	_, err := svc.SetBrandIndustries(context.Background(), "brand-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAddBrandIndustryConflict(t *testing.T) {
	repo := &taxonomyRepoStub{brandRows: []models.BrandIndustry{
		{BrandID: "brand-1", Industry: "technology", IsPrimary: true},
	}}
	svc := newTaxonomyService(repo)

	_, err := svc.AddBrandIndustry(context.Background(), "brand-1", BrandIndustryInput{Industry: "Technology"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAddBrandIndustryFirstBecomesPrimary(t *testing.T) {
	repo := &taxonomyRepoStub{}
	svc := newTaxonomyService(repo)

	row, err := svc.AddBrandIndustry(context.Background(), "brand-1", BrandIndustryInput{Industry: "finance"})
	require.NoError(t, err)
	assert.True(t, row.IsPrimary)
	assert.Equal(t, "finance", repo.added.Industry)
}

func TestRemoveBrandIndustryNotFound(t *testing.T) {
	svc := newTaxonomyService(&taxonomyRepoStub{removeResult: false})

	err := svc.RemoveBrandIndustry(context.Background(), "brand-1", "row-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetIndustryMapPrefersDatabaseCopy(t *testing.T) {
	repo := &taxonomyRepoStub{categories: []models.MajorCategory{
		{ID: "cat-1", Name: "Computer Science & IT", Industries: pq.StringArray{"technology", "media"}},
		{ID: "cat-2", Name: "Engineering", Industries: pq.StringArray{"technology"}},
	}}
	svc := newTaxonomyService(repo)

	m := svc.GetIndustryMap(context.Background())
	assert.ElementsMatch(t, []string{"Computer Science & IT", "Engineering"}, m["technology"])
	assert.Equal(t, []string{"Computer Science & IT"}, m["media"])
}

func TestGetIndustryMapFallsBackToSeed(t *testing.T) {
	repo := &taxonomyRepoStub{categoriesErr: errors.New("db down")}
	svc := newTaxonomyService(repo)

	m := svc.GetIndustryMap(context.Background())
	assert.NotEmpty(t, m["technology"])
	assert.Contains(t, m["technology"], "Computer Science & IT")
}

func TestCategoryIDsForIndustriesNormalizesInput(t *testing.T) {
	repo := &taxonomyRepoStub{categoryIDs: []string{"cat-1"}}
	svc := newTaxonomyService(repo)

	ids, err := svc.CategoryIDsForIndustries(context.Background(), []string{"  Technology ", "FINANCE", "technology", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, ids)
	assert.Equal(t, []string{"technology", "finance"}, repo.queried)

	_, err = svc.CategoryIDsForIndustries(context.Background(), []string{"   ", ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetIndustryMapReturnsIsolatedCopy(t *testing.T) {
	repo := &taxonomyRepoStub{categories: []models.MajorCategory{
		{ID: "cat-1", Name: "Computer Science & IT", Industries: pq.StringArray{"technology"}},
	}}
	svc := newTaxonomyService(repo)

	first := svc.GetIndustryMap(context.Background())
	first["technology"] = append(first["technology"], "Bogus Major")
	delete(first, "technology")
	first["made-up"] = []string{"Nowhere"}

	second := svc.GetIndustryMap(context.Background())
	assert.Equal(t, []string{"Computer Science & IT"}, second["technology"])
	assert.NotContains(t, second, "made-up")
}
