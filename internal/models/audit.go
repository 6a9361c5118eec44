package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audit actions recorded by the auth flows and mutating middleware.
const (
	AuditActionLogin  = "LOGIN"
	AuditActionLogout = "LOGOUT"
)

// AuditLog records a mutating request for traceability.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  types.JSONText `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
