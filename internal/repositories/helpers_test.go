package repositories

import (
	"time"

	"credhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func stringPtr(s string) *string {
	return &s
}

var fixedTime = time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC)

var providerColumnNames = []string{
	"id", "organization_id", "location_id", "first_name", "last_name", "email", "phone",
	"specialty", "license_number", "license_expiry", "status", "created_at", "updated_at",
	"organization", "location",
}

func providerRows(providers ...*models.Provider) *pgxmock.Rows {
	rows := pgxmock.NewRows(providerColumnNames)
	for _, p := range providers {
		rows.AddRow(p.ID, p.OrganizationID, p.LocationID, p.FirstName, p.LastName, p.Email, p.Phone,
			p.Specialty, p.LicenseNumber, p.LicenseExpiry, p.Status, p.CreatedAt, p.UpdatedAt,
			p.Organization, p.Location)
	}
	return rows
}

var taskColumnNames = []string{
	"id", "workflow_id", "provider_id", "title", "description", "status", "priority", "due_date",
	"assigned_to", "completed_at", "created_at", "updated_at", "workflow", "provider",
}

func taskRows(tasks ...*models.Task) *pgxmock.Rows {
	rows := pgxmock.NewRows(taskColumnNames)
	for _, t := range tasks {
		rows.AddRow(t.ID, t.WorkflowID, t.ProviderID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
			t.AssignedTo, t.CompletedAt, t.CreatedAt, t.UpdatedAt, t.Workflow, t.Provider)
	}
	return rows
}

func newOrganization(name string) *models.Organization {
	return &models.Organization{ID: uuid.New(), Name: name, CreatedAt: fixedTime, UpdatedAt: fixedTime}
}

func newProvider(org *models.Organization, first, last string) *models.Provider {
	return &models.Provider{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		FirstName:      first,
		LastName:       last,
		Status:         models.ProviderStatusPending,
		CreatedAt:      fixedTime,
		UpdatedAt:      fixedTime,
		Organization:   org,
	}
}
