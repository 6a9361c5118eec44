package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

// TaxonomyRepository persists the major/industry taxonomy and brand industry
// links. Multi-step writes run inside a transaction so a mid-sequence failure
// cannot leave a brand with partial industry state.
type TaxonomyRepository struct {
	db *sqlx.DB
}

// NewTaxonomyRepository constructs a taxonomy repository.
func NewTaxonomyRepository(db *sqlx.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

// ListMajorCategories returns the canonical taxonomy rows.
func (r *TaxonomyRepository) ListMajorCategories(ctx context.Context) ([]models.MajorCategory, error) {
	const query = `SELECT id, name, industries, created_at FROM major_categories ORDER BY name`
	var categories []models.MajorCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list major categories: %w", err)
	}
	return categories, nil
}

// FindCategoryIDsByIndustries returns IDs of categories whose industry set
// overlaps the given industries.
func (r *TaxonomyRepository) FindCategoryIDsByIndustries(ctx context.Context, industries []string) ([]string, error) {
	if len(industries) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM major_categories WHERE industries && $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(industries)); err != nil {
		return nil, fmt.Errorf("find categories by industries: %w", err)
	}
	return ids, nil
}

// ListBrandIndustries returns a brand's industry rows.
func (r *TaxonomyRepository) ListBrandIndustries(ctx context.Context, brandID string) ([]models.BrandIndustry, error) {
	const query = `SELECT id, brand_id, industry, is_primary, created_at FROM brand_industries WHERE brand_id = $1 ORDER BY is_primary DESC, industry`
	var rows []models.BrandIndustry
	if err := r.db.SelectContext(ctx, &rows, query, brandID); err != nil {
		return nil, fmt.Errorf("list brand industries: %w", err)
	}
	return rows, nil
}

// ReplaceBrandIndustries deletes the brand's existing rows and inserts the
// provided set in a single transaction. Callers must have already enforced
// the single-primary invariant on the slice.
func (r *TaxonomyRepository) ReplaceBrandIndustries(ctx context.Context, brandID string, rows []models.BrandIndustry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace brand industries: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM brand_industries WHERE brand_id = $1", brandID); err != nil {
		return fmt.Errorf("clear brand industries: %w", err)
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].BrandID = brandID
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
		const insert = `INSERT INTO brand_industries (id, brand_id, industry, is_primary, created_at)
VALUES (:id, :brand_id, :industry, :is_primary, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insert, rows[i]); err != nil {
			return fmt.Errorf("insert brand industry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace brand industries: %w", err)
	}
	return nil
}

// AddBrandIndustry inserts one industry row; when it is primary, the previous
// primary flag is cleared in the same transaction.
func (r *TaxonomyRepository) AddBrandIndustry(ctx context.Context, row *models.BrandIndustry) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add brand industry: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if row.IsPrimary {
		if _, err := tx.ExecContext(ctx, "UPDATE brand_industries SET is_primary = FALSE WHERE brand_id = $1 AND is_primary = TRUE", row.BrandID); err != nil {
			return fmt.Errorf("clear primary industry: %w", err)
		}
	}
	const insert = `INSERT INTO brand_industries (id, brand_id, industry, is_primary, created_at)
VALUES (:id, :brand_id, :industry, :is_primary, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
		return fmt.Errorf("insert brand industry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add brand industry: %w", err)
	}
	return nil
}

// RemoveBrandIndustry deletes one row scoped to the owning brand and reports
// whether a row was removed.
func (r *TaxonomyRepository) RemoveBrandIndustry(ctx context.Context, brandID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM brand_industries WHERE id = $1 AND brand_id = $2", id, brandID)
	if err != nil {
		return false, fmt.Errorf("remove brand industry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove brand industry rows: %w", err)
	}
	return affected > 0, nil
}
