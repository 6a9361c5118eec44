package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gradeup-app/gradeup-api/internal/models"
)

const brandColumns = `id, user_id, name, industry, logo_url, is_verified, description, created_at, updated_at`

// BrandRepository reads brand profiles.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository constructs a brand repository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// GetByID fetches a brand profile.
func (r *BrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	query := fmt.Sprintf("SELECT %s FROM brands WHERE id = $1", brandColumns)
	var brand models.Brand
	if err := r.db.GetContext(ctx, &brand, query, id); err != nil {
		return nil, err
	}
	return &brand, nil
}

// GetByUserID resolves the authenticated user to their brand profile.
func (r *BrandRepository) GetByUserID(ctx context.Context, userID string) (*models.Brand, error) {
	query := fmt.Sprintf("SELECT %s FROM brands WHERE user_id = $1", brandColumns)
	var brand models.Brand
	if err := r.db.GetContext(ctx, &brand, query, userID); err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListVerifiedIDs returns IDs of all verified brands, the candidate set for
// athlete-side score recomputation.
func (r *BrandRepository) ListVerifiedIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM brands WHERE is_verified = TRUE ORDER BY id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list verified brands: %w", err)
	}
	return ids, nil
}
