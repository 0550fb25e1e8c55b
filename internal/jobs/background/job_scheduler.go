package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"credhub/internal/caching"
	"credhub/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	ComplianceSweepJob = "license-compliance-sweep"
	StatsRefreshJob    = "dashboard-stats-refresh"

	statsRefreshInterval = time.Hour
)

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	compliance services.ComplianceService
	cacheSvc   caching.CacheService
	logger     *zap.Logger
	now        func() time.Time
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler registers the license sweep at sweepInterval and the
// hourly dashboard stats refresh.
func NewJobScheduler(compliance services.ComplianceService, cacheSvc caching.CacheService, sweepInterval time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		compliance: compliance,
		cacheSvc:   cacheSvc,
		logger:     logger,
		now:        time.Now,
		jobs:       make(map[string]gocron.Job),
	}

	if err := js.add(ComplianceSweepJob, sweepInterval, js.sweepLicenses); err != nil {
		return nil, err
	}
	if cacheSvc != nil {
		if err := js.add(StatsRefreshJob, statsRefreshInterval, js.refreshStats); err != nil {
			return nil, err
		}
	}

	logger.Info("background jobs registered", zap.Strings("jobs", js.JobNames()))
	return js, nil
}

func (js *JobScheduler) add(name string, interval time.Duration, fn func(context.Context) error) error {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs, sorted.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sweepLicenses checks every organization for expired licenses.
func (js *JobScheduler) sweepLicenses(ctx context.Context) error {
	result, err := js.compliance.Run(ctx, nil, js.now())
	if err != nil {
		js.logger.Error("license sweep failed", zap.Error(err))
		return err
	}
	js.logger.Info("license sweep completed",
		zap.Int("providers_checked", result.ProvidersChecked),
		zap.Int("expired", len(result.ExpiredProviders)),
		zap.Int("tasks_created", result.TasksCreated))
	return nil
}

// refreshStats drops cached dashboard counts so the next read recomputes
// them.
func (js *JobScheduler) refreshStats(ctx context.Context) error {
	if err := js.cacheSvc.InvalidateDashboardStats(ctx); err != nil {
		js.logger.Warn("dashboard stats refresh failed", zap.Error(err))
		return err
	}
	return nil
}
