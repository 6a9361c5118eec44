package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

func TestTaxonomyRepositoryFindCategoryIDsByIndustries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaxonomyRepository(db)

	mock.ExpectQuery("SELECT id FROM major_categories WHERE industries").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1").AddRow("cat-2"))

	ids, err := repo.FindCategoryIDsByIndustries(context.Background(), []string{"technology"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1", "cat-2"}, ids)

	ids, err = repo.FindCategoryIDsByIndustries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaxonomyRepositoryReplaceBrandIndustriesTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaxonomyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM brand_industries WHERE brand_id").
		WithArgs("brand-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO brand_industries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO brand_industries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rows := []models.BrandIndustry{
		{Industry: "fitness", IsPrimary: true},
		{Industry: "apparel"},
	}
	err := repo.ReplaceBrandIndustries(context.Background(), "brand-1", rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaxonomyRepositoryReplaceBrandIndustriesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaxonomyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM brand_industries WHERE brand_id").
		WithArgs("brand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO brand_industries").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceBrandIndustries(context.Background(), "brand-1", []models.BrandIndustry{{Industry: "fitness"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaxonomyRepositoryAddPrimaryClearsPreviousPrimary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaxonomyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE brand_industries SET is_primary = FALSE").
		WithArgs("brand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO brand_industries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.AddBrandIndustry(context.Background(), &models.BrandIndustry{
		BrandID:   "brand-1",
		Industry:  "technology",
		IsPrimary: true,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaxonomyRepositoryRemoveBrandIndustryScopedToOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaxonomyRepository(db)

	mock.ExpectExec("DELETE FROM brand_industries WHERE id").
		WithArgs("bi-1", "brand-other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.RemoveBrandIndustry(context.Background(), "brand-other", "bi-1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
