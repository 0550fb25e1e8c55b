package viewmodel

import (
	"strings"

	"credhub/internal/models"

	"github.com/google/uuid"
)

// ProviderFilter is the provider search box plus the specialty and location
// pickers. Zero values do not filter.
type ProviderFilter struct {
	Query      string
	Specialty  string
	LocationID *uuid.UUID
}

// FilterProviders keeps the providers matching f, in their original order.
// Query is a case-insensitive substring match over names, email, phone,
// license number, specialty and location name.
func FilterProviders(providers []*models.Provider, f ProviderFilter, locationNames map[uuid.UUID]string) []*models.Provider {
	needle := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*models.Provider, 0, len(providers))
	for _, p := range providers {
		if f.Specialty != "" && (p.Specialty == nil || *p.Specialty != f.Specialty) {
			continue
		}
		if f.LocationID != nil && (p.LocationID == nil || *p.LocationID != *f.LocationID) {
			continue
		}
		if needle != "" && !strings.Contains(providerHaystack(p, locationNames), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func providerHaystack(p *models.Provider, locationNames map[uuid.UUID]string) string {
	fields := []string{p.FirstName, p.LastName}
	for _, s := range []*string{p.Email, p.Phone, p.LicenseNumber, p.Specialty} {
		if s != nil {
			fields = append(fields, *s)
		}
	}
	if p.LocationID != nil {
		fields = append(fields, locationNames[*p.LocationID])
	}

	nonEmpty := fields[:0]
	for _, s := range fields {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.ToLower(strings.Join(nonEmpty, " "))
}

type ProviderTab string

const (
	ProviderTabActive   ProviderTab = "active"
	ProviderTabInactive ProviderTab = "inactive"
)

// PartitionProviders returns the active providers for ProviderTabActive and
// every other provider otherwise.
func PartitionProviders(providers []*models.Provider, tab ProviderTab) []*models.Provider {
	out := make([]*models.Provider, 0, len(providers))
	for _, p := range providers {
		if (p.Status == models.ProviderStatusActive) == (tab == ProviderTabActive) {
			out = append(out, p)
		}
	}
	return out
}

func TasksByStatus(tasks []*models.Task, status string) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func WorkflowsByType(workflows []*models.Workflow, workflowType string) []*models.Workflow {
	out := make([]*models.Workflow, 0, len(workflows))
	for _, w := range workflows {
		if w.Type == workflowType {
			out = append(out, w)
		}
	}
	return out
}
