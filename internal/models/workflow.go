package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStep is one entry of a workflow's ordered step list. Its shape is
// left to the dashboard.
type WorkflowStep map[string]any

type Workflow struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	OrganizationID uuid.UUID      `json:"organization_id" db:"organization_id"`
	Name           string         `json:"name" db:"name"`
	Description    *string        `json:"description" db:"description"`
	Type           string         `json:"type" db:"type"`
	Status         string         `json:"status" db:"status"`
	Steps          []WorkflowStep `json:"steps" db:"steps"`
	CreatedBy      *uuid.UUID     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	Organization   *Organization  `json:"organization,omitempty" db:"-"`
}

const (
	WorkflowTypeCredentialing = "credentialing"
	WorkflowTypeRenewal       = "renewal"
	WorkflowTypeCompliance    = "compliance"

	WorkflowStatusActive   = "active"
	WorkflowStatusDraft    = "draft"
	WorkflowStatusArchived = "archived"
)
