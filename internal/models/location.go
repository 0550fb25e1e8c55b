package models

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OrganizationID uuid.UUID     `json:"organization_id" db:"organization_id"`
	Name           string        `json:"name" db:"name"`
	Address        *string       `json:"address" db:"address"`
	Departments    int           `json:"departments" db:"departments"`
	Status         string        `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
	Organization   *Organization `json:"organization,omitempty" db:"-"`
}

const (
	LocationStatusActive   = "active"
	LocationStatusInactive = "inactive"
)
