package services

import (
	"context"
	"fmt"
	"time"

	"credhub/internal/caching"
	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dashboardStatsTTL = 30 * time.Second

type DashboardService interface {
	// Stats returns the four headline counts over the viewer's
	// organizations, optionally narrowed to one of them. A nil viewer counts
	// every organization. An unconfigured store yields zeros.
	Stats(ctx context.Context, viewerID, organizationID *uuid.UUID) (*models.DashboardStats, error)
}

type dashboardService struct {
	statsRepo repositories.StatsRepository
	orgs      OrganizationService
	cache     caching.CacheService
	logger    *zap.Logger
}

func NewDashboardService(statsRepo repositories.StatsRepository, orgs OrganizationService, cache caching.CacheService, logger *zap.Logger) DashboardService {
	return &dashboardService{statsRepo: statsRepo, orgs: orgs, cache: cache, logger: logger}
}

// statsScope is the cache key suffix; each viewer gets its own entries.
func statsScope(viewerID, organizationID *uuid.UUID) string {
	org := "all"
	if organizationID != nil {
		org = organizationID.String()
	}
	if viewerID == nil {
		return org
	}
	return viewerID.String() + ":" + org
}

func (s *dashboardService) Stats(ctx context.Context, viewerID, organizationID *uuid.UUID) (*models.DashboardStats, error) {
	if viewerID != nil && organizationID != nil {
		if _, err := s.orgs.MembershipFor(ctx, *viewerID, organizationID); err != nil {
			switch {
			case common.IsNotFound(err):
				return nil, fmt.Errorf("%w %s", common.ErrForbidden, organizationID.String())
			case isNotConfigured(err):
				return &models.DashboardStats{}, nil
			}
			return nil, err
		}
	}

	scope := statsScope(viewerID, organizationID)
	if s.cache != nil {
		cached, err := s.cache.GetDashboardStats(ctx, scope)
		if err != nil {
			s.logger.Debug("dashboard stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.statsRepo.DashboardStats(ctx, models.Scope{OrganizationID: organizationID, ViewerID: viewerID})
	if err != nil {
		if isNotConfigured(err) {
			return &models.DashboardStats{}, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboardStats(ctx, scope, stats, dashboardStatsTTL); err != nil {
			s.logger.Debug("dashboard stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}
