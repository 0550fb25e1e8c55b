package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"credhub/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type definitions
const (
	TypeComplianceCheck = "compliance:check"
)

const (
	complianceQueue    = "compliance"
	complianceMaxRetry = 3
	complianceTimeout  = 5 * time.Minute
)

// ComplianceCheckPayload is the body of a queued compliance check. A nil
// OrganizationID checks every organization.
type ComplianceCheckPayload struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	AsOf           time.Time  `json:"as_of"`
}

// NewComplianceCheckTask creates a compliance check task
func NewComplianceCheckTask(organizationID *uuid.UUID, asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ComplianceCheckPayload{OrganizationID: organizationID, AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeComplianceCheck, data), nil
}

// Enqueuer is the part of *asynq.Client the queue uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ComplianceQueue submits compliance checks to the worker pool.
type ComplianceQueue struct {
	client Enqueuer
	logger *zap.Logger
	now    func() time.Time
}

func NewComplianceQueue(client Enqueuer, logger *zap.Logger) *ComplianceQueue {
	return &ComplianceQueue{client: client, logger: logger, now: time.Now}
}

func (q *ComplianceQueue) EnqueueComplianceCheck(ctx context.Context, organizationID *uuid.UUID) (string, error) {
	task, err := NewComplianceCheckTask(organizationID, q.now())
	if err != nil {
		return "", err
	}
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(complianceQueue),
		asynq.MaxRetry(complianceMaxRetry),
		asynq.Timeout(complianceTimeout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue compliance check: %w", err)
	}
	q.logger.Info("compliance check queued", zap.String("task_id", info.ID), orgField(organizationID))
	return info.ID, nil
}

// ComplianceWorker runs queued compliance checks.
type ComplianceWorker struct {
	compliance services.ComplianceService
	logger     *zap.Logger
}

func NewComplianceWorker(compliance services.ComplianceService, logger *zap.Logger) *ComplianceWorker {
	return &ComplianceWorker{compliance: compliance, logger: logger}
}

// HandleComplianceCheck handles compliance check tasks
func (w *ComplianceWorker) HandleComplianceCheck(ctx context.Context, t *asynq.Task) error {
	var payload ComplianceCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal compliance payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.AsOf.IsZero() {
		payload.AsOf = time.Now()
	}

	result, err := w.compliance.Run(ctx, payload.OrganizationID, payload.AsOf)
	if err != nil {
		w.logger.Error("compliance check failed", orgField(payload.OrganizationID), zap.Error(err))
		return err
	}

	w.logger.Info("compliance check completed",
		orgField(payload.OrganizationID),
		zap.Int("providers_checked", result.ProvidersChecked),
		zap.Int("expired", len(result.ExpiredProviders)),
		zap.Int("tasks_created", result.TasksCreated))
	return nil
}

// NewServeMux routes every task type to its worker.
func NewServeMux(worker *ComplianceWorker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeComplianceCheck, worker.HandleComplianceCheck)
	return mux
}

// NewServer builds the asynq worker server.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int, logger *zap.Logger) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			complianceQueue: 1,
		},
		Logger: logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
}

func orgField(organizationID *uuid.UUID) zap.Field {
	if organizationID == nil {
		return zap.String("organization_id", "all")
	}
	return zap.String("organization_id", organizationID.String())
}
