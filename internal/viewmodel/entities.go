package viewmodel

import (
	"context"

	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/google/uuid"
)

// OrgFilter narrows a listing to one organization; nil shows every
// organization the viewer belongs to.
type OrgFilter struct {
	OrganizationID *uuid.UUID
}

type Providers struct {
	*Collection[*models.Provider, OrgFilter]
	svc    services.ProviderService
	viewer *uuid.UUID
}

func NewProviders(svc services.ProviderService, viewer *uuid.UUID, filter OrgFilter) *Providers {
	fetch := func(ctx context.Context, f OrgFilter) ([]*models.Provider, error) {
		return svc.List(ctx, viewer, f.OrganizationID)
	}
	return &Providers{
		Collection: NewCollection[*models.Provider, OrgFilter](fetch, func(p *models.Provider) uuid.UUID { return p.ID }, filter),
		svc:        svc,
		viewer:     viewer,
	}
}

func (p *Providers) Create(ctx context.Context, req *services.CreateProviderRequest) (*models.Provider, error) {
	return p.Collection.Create(ctx, func(ctx context.Context) (*models.Provider, error) {
		return p.svc.Create(ctx, p.viewer, req)
	})
}

func (p *Providers) Update(ctx context.Context, id uuid.UUID, req *services.UpdateProviderRequest) (*models.Provider, error) {
	return p.Collection.Update(ctx, id, func(ctx context.Context) (*models.Provider, error) {
		return p.svc.Update(ctx, p.viewer, id, req)
	})
}

type Locations struct {
	*Collection[*models.Location, OrgFilter]
	svc    services.LocationService
	viewer *uuid.UUID
}

func NewLocations(svc services.LocationService, viewer *uuid.UUID, filter OrgFilter) *Locations {
	fetch := func(ctx context.Context, f OrgFilter) ([]*models.Location, error) {
		return svc.List(ctx, viewer, f.OrganizationID)
	}
	return &Locations{
		Collection: NewCollection[*models.Location, OrgFilter](fetch, func(l *models.Location) uuid.UUID { return l.ID }, filter),
		svc:        svc,
		viewer:     viewer,
	}
}

func (l *Locations) Create(ctx context.Context, req *services.CreateLocationRequest) (*models.Location, error) {
	return l.Collection.Create(ctx, func(ctx context.Context) (*models.Location, error) {
		return l.svc.Create(ctx, l.viewer, req)
	})
}

// Names maps location ids to names for FilterProviders.
func (l *Locations) Names() map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	for _, loc := range l.Items() {
		names[loc.ID] = loc.Name
	}
	return names
}

type Workflows struct {
	*Collection[*models.Workflow, OrgFilter]
	svc    services.WorkflowService
	viewer *uuid.UUID
}

func NewWorkflows(svc services.WorkflowService, viewer *uuid.UUID, filter OrgFilter) *Workflows {
	fetch := func(ctx context.Context, f OrgFilter) ([]*models.Workflow, error) {
		return svc.List(ctx, viewer, f.OrganizationID)
	}
	return &Workflows{
		Collection: NewCollection[*models.Workflow, OrgFilter](fetch, func(w *models.Workflow) uuid.UUID { return w.ID }, filter),
		svc:        svc,
		viewer:     viewer,
	}
}

func (w *Workflows) Create(ctx context.Context, req *services.CreateWorkflowRequest) (*models.Workflow, error) {
	return w.Collection.Create(ctx, func(ctx context.Context) (*models.Workflow, error) {
		return w.svc.Create(ctx, w.viewer, req)
	})
}

type Tasks struct {
	*Collection[*models.Task, models.TaskFilters]
	svc    services.TaskService
	viewer *uuid.UUID
}

func NewTasks(svc services.TaskService, viewer *uuid.UUID, filters models.TaskFilters) *Tasks {
	fetch := func(ctx context.Context, f models.TaskFilters) ([]*models.Task, error) {
		return svc.List(ctx, viewer, f)
	}
	return &Tasks{
		Collection: NewCollection[*models.Task, models.TaskFilters](fetch, func(t *models.Task) uuid.UUID { return t.ID }, filters),
		svc:        svc,
		viewer:     viewer,
	}
}

func (t *Tasks) Create(ctx context.Context, req *services.CreateTaskRequest) (*models.Task, error) {
	return t.Collection.Create(ctx, func(ctx context.Context) (*models.Task, error) {
		return t.svc.Create(ctx, t.viewer, req)
	})
}

func (t *Tasks) Update(ctx context.Context, id uuid.UUID, req *services.UpdateTaskRequest) (*models.Task, error) {
	return t.Collection.Update(ctx, id, func(ctx context.Context) (*models.Task, error) {
		return t.svc.Update(ctx, t.viewer, id, req)
	})
}
