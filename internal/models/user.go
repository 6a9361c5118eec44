package models

import "time"

// UserRole enumerates platform roles.
type UserRole string

const (
	RoleAthlete     UserRole = "ATHLETE"
	RoleBrand       UserRole = "BRAND"
	RoleSchoolAdmin UserRole = "SCHOOL_ADMIN"
	RoleAdmin       UserRole = "ADMIN"
)

// User is a platform account. Athlete and brand profiles hang off it.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
