package services

import (
	"context"
	"fmt"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// renewalWindow is how long a renewal task stays open before it is due.
const renewalWindow = 30 * 24 * time.Hour

type ComplianceService interface {
	// Run marks every provider whose license expired before asOf as expired
	// and opens one renewal task per provider. A nil organizationID checks
	// every organization.
	Run(ctx context.Context, organizationID *uuid.UUID, asOf time.Time) (*models.ComplianceResult, error)
}

// RenewalTx runs fn with provider and task repositories bound to a single
// transaction.
type RenewalTx func(ctx context.Context, fn func(providers repositories.ProviderRepository, tasks repositories.TaskRepository) error) error

func NewRenewalTx(db repositories.DBTX) RenewalTx {
	return func(ctx context.Context, fn func(repositories.ProviderRepository, repositories.TaskRepository) error) error {
		return repositories.RunInTx(ctx, db, func(tx repositories.DBTX) error {
			return fn(repositories.NewProviderRepo(tx), repositories.NewTaskRepo(tx))
		})
	}
}

type complianceService struct {
	providerRepo repositories.ProviderRepository
	workflowRepo repositories.WorkflowRepository
	inTx         RenewalTx
	effects      WriteEffects
	logger       *zap.Logger
}

func NewComplianceService(providerRepo repositories.ProviderRepository, workflowRepo repositories.WorkflowRepository, inTx RenewalTx, effects WriteEffects, logger *zap.Logger) ComplianceService {
	return &complianceService{
		providerRepo: providerRepo,
		workflowRepo: workflowRepo,
		inTx:         inTx,
		effects:      effects,
		logger:       logger,
	}
}

func (s *complianceService) Run(ctx context.Context, organizationID *uuid.UUID, asOf time.Time) (*models.ComplianceResult, error) {
	result := &models.ComplianceResult{
		OrganizationID:   organizationID,
		CheckedAt:        asOf,
		ExpiredProviders: []uuid.UUID{},
	}

	providers, err := s.providerRepo.ListLicenseExpired(ctx, organizationID, asOf)
	if err != nil {
		return nil, err
	}
	result.ProvidersChecked = len(providers)

	renewalWorkflows := map[uuid.UUID]*uuid.UUID{}
	expired := models.ProviderStatusExpired
	for _, p := range providers {
		workflowID, ok := renewalWorkflows[p.OrganizationID]
		if !ok {
			workflowID = s.renewalWorkflow(ctx, p.OrganizationID)
			renewalWorkflows[p.OrganizationID] = workflowID
		}

		// The provider only stays expired if its renewal task exists, so a
		// failed run is retried by the next one.
		var task *models.Task
		err := s.inTx(ctx, func(providerTx repositories.ProviderRepository, taskTx repositories.TaskRepository) error {
			if _, err := providerTx.Update(ctx, p.ID, &models.ProviderPatch{Status: &expired}, nil); err != nil {
				return err
			}
			var err error
			task, err = taskTx.Create(ctx, renewalTask(p, workflowID, asOf))
			return err
		})
		if err != nil {
			return result, err
		}

		result.ExpiredProviders = append(result.ExpiredProviders, p.ID)
		result.TasksCreated++
		s.effects.updated(ctx, p.OrganizationID, "providers", p.ID.String(), nil,
			map[string]any{"status": p.Status}, map[string]any{"status": expired})
		s.effects.created(ctx, p.OrganizationID, "tasks", task.ID.String(), nil, task)
	}

	s.logger.Info("compliance check completed",
		zap.Int("providers_checked", result.ProvidersChecked),
		zap.Int("tasks_created", result.TasksCreated))
	return result, nil
}

// renewalWorkflow returns the organization's first active renewal workflow.
func (s *complianceService) renewalWorkflow(ctx context.Context, organizationID uuid.UUID) *uuid.UUID {
	workflows, err := s.workflowRepo.List(ctx, models.Scope{OrganizationID: &organizationID})
	if err != nil {
		s.logger.Warn("renewal workflow lookup failed", zap.String("organization_id", organizationID.String()), zap.Error(err))
		return nil
	}
	for _, w := range workflows {
		if w.Type == models.WorkflowTypeRenewal && w.Status == models.WorkflowStatusActive {
			id := w.ID
			return &id
		}
	}
	return nil
}

func renewalTask(p *models.Provider, workflowID *uuid.UUID, asOf time.Time) *models.Task {
	providerID := p.ID
	due := asOf.Add(renewalWindow)
	dueDate := models.NewDate(due.Year(), due.Month(), due.Day())

	expiredOn := "an unknown date"
	if p.LicenseExpiry != nil {
		expiredOn = p.LicenseExpiry.String()
	}
	description := fmt.Sprintf("License expired on %s.", expiredOn)
	if p.LicenseNumber != nil {
		description = fmt.Sprintf("License %s expired on %s.", *p.LicenseNumber, expiredOn)
	}

	return &models.Task{
		WorkflowID:  workflowID,
		ProviderID:  &providerID,
		Title:       "Renew license for " + p.FullName(),
		Description: common.StringPtr(description),
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityHigh,
		DueDate:     &dueDate,
	}
}
