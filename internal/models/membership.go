package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership links a user to an organization (table org_members).
type Membership struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Role           string    `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)
