package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	WorkflowID  *uuid.UUID `json:"workflow_id" db:"workflow_id"`
	ProviderID  *uuid.UUID `json:"provider_id" db:"provider_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	DueDate     *Date      `json:"due_date" db:"due_date"`
	AssignedTo  *uuid.UUID `json:"assigned_to" db:"assigned_to"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Workflow    *Workflow  `json:"workflow,omitempty" db:"-"`
	Provider    *Provider  `json:"provider,omitempty" db:"-"`
}

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusRejected   = "rejected"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// TaskFilters narrows a task listing. Nil fields are not applied.
type TaskFilters struct {
	WorkflowID *uuid.UUID `json:"workflow_id,omitempty"`
	ProviderID *uuid.UUID `json:"provider_id,omitempty"`
	Status     *string    `json:"status,omitempty"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
}

// TaskPatch carries only the fields to change. Nil uuid values clear the
// corresponding reference; a zero DueDate or CompletedAt clears the column.
type TaskPatch struct {
	WorkflowID  *uuid.UUID `json:"workflow_id,omitempty"`
	ProviderID  *uuid.UUID `json:"provider_id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *Date      `json:"due_date,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func optionalID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func (p *TaskPatch) Assignments() []Assignment {
	var out []Assignment
	if p.WorkflowID != nil {
		out = append(out, Assignment{"workflow_id", optionalID(*p.WorkflowID)})
	}
	if p.ProviderID != nil {
		out = append(out, Assignment{"provider_id", optionalID(*p.ProviderID)})
	}
	if p.Title != nil {
		out = append(out, Assignment{"title", *p.Title})
	}
	if p.Description != nil {
		out = append(out, Assignment{"description", *p.Description})
	}
	if p.Status != nil {
		out = append(out, Assignment{"status", *p.Status})
	}
	if p.Priority != nil {
		out = append(out, Assignment{"priority", *p.Priority})
	}
	if p.DueDate != nil {
		out = append(out, Assignment{"due_date", optionalDate(*p.DueDate)})
	}
	if p.AssignedTo != nil {
		out = append(out, Assignment{"assigned_to", optionalID(*p.AssignedTo)})
	}
	if p.CompletedAt != nil {
		if p.CompletedAt.IsZero() {
			out = append(out, Assignment{"completed_at", nil})
		} else {
			out = append(out, Assignment{"completed_at", *p.CompletedAt})
		}
	}
	return out
}
