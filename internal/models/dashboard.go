package models

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStats are the four headline counts.
type DashboardStats struct {
	TotalProviders  int64 `json:"total_providers"`
	ActiveWorkflows int64 `json:"active_workflows"`
	CompletedTasks  int64 `json:"completed_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
}

// Scope limits a listing. OrganizationID filters to one organization;
// ViewerID restricts rows to organizations the viewer belongs to.
type Scope struct {
	OrganizationID *uuid.UUID
	ViewerID       *uuid.UUID
}

// ComplianceResult summarizes one compliance check run.
type ComplianceResult struct {
	OrganizationID   *uuid.UUID  `json:"organization_id,omitempty"`
	CheckedAt        time.Time   `json:"checked_at"`
	ProvidersChecked int         `json:"providers_checked"`
	ExpiredProviders []uuid.UUID `json:"expired_providers"`
	TasksCreated     int         `json:"tasks_created"`
}

// DiagnosticsReport is the outcome of the store self-test.
type DiagnosticsReport struct {
	Connection    CheckResult      `json:"connection"`
	Tables        []TableCheck     `json:"tables"`
	Counts        map[string]int64 `json:"counts"`
	Relationships []CheckResult    `json:"relationships"`
	Healthy       bool             `json:"healthy"`
}

type CheckResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

type TableCheck struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}
