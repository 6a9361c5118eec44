package models

import "time"

// Brand is a company profile seeking NIL deals.
type Brand struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Industry    string    `db:"industry" json:"industry"`
	LogoURL     *string   `db:"logo_url" json:"logo_url,omitempty"`
	IsVerified  bool      `db:"is_verified" json:"is_verified"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BrandIndustry links a brand to one of possibly several industries.
// Invariant: at most one row per brand carries IsPrimary=true.
type BrandIndustry struct {
	ID        string    `db:"id" json:"id"`
	BrandID   string    `db:"brand_id" json:"brand_id"`
	Industry  string    `db:"industry" json:"industry"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
