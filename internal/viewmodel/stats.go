package viewmodel

import (
	"context"
	"sync"

	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/google/uuid"
)

// StatsView holds the dashboard counts. Stats start at zero.
type StatsView struct {
	svc            services.DashboardService
	viewerID       *uuid.UUID
	organizationID *uuid.UUID

	mu         sync.Mutex
	stats      models.DashboardStats
	loading    bool
	err        string
	generation uint64
}

type StatsSnapshot struct {
	Stats   models.DashboardStats
	Loading bool
	Err     string
}

func NewStatsView(svc services.DashboardService, viewerID, organizationID *uuid.UUID) *StatsView {
	return &StatsView{svc: svc, viewerID: viewerID, organizationID: organizationID}
}

func (v *StatsView) Refetch(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.loading = true
	v.mu.Unlock()

	stats, err := v.svc.Stats(ctx, v.viewerID, v.organizationID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return nil
	}
	v.loading = false
	if err != nil {
		v.err = err.Error()
		return err
	}
	v.stats = *stats
	v.err = ""
	return nil
}

func (v *StatsView) Snapshot() StatsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return StatsSnapshot{Stats: v.stats, Loading: v.loading, Err: v.err}
}
