package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"
)

const connectionTestTimeout = 10 * time.Second

// countedTables are the tables whose row counts the diagnostics report.
var countedTables = []string{"organizations", "locations", "providers", "workflows", "tasks"}

type DiagnosticsService interface {
	// Run executes the connection test, schema verification, row counts and
	// relationship probes. Only ErrNotConfigured is returned as an error;
	// individual failures are recorded in the report.
	Run(ctx context.Context) (*models.DiagnosticsReport, error)
}

type diagnosticsService struct {
	repo    repositories.DiagnosticsRepository
	timeout time.Duration
}

func NewDiagnosticsService(repo repositories.DiagnosticsRepository) DiagnosticsService {
	return &diagnosticsService{repo: repo, timeout: connectionTestTimeout}
}

// withTimeout runs fn under a deadline and reports expiry as a TimeoutError.
func withTimeout(ctx context.Context, op string, after time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, after)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &common.TimeoutError{Op: op, After: after}
		}
		return err
	case <-ctx.Done():
		return &common.TimeoutError{Op: op, After: after}
	}
}

func (s *diagnosticsService) Run(ctx context.Context) (*models.DiagnosticsReport, error) {
	report := &models.DiagnosticsReport{
		Connection:    models.CheckResult{Name: "connection"},
		Tables:        []models.TableCheck{},
		Counts:        map[string]int64{},
		Relationships: []models.CheckResult{},
	}

	err := withTimeout(ctx, "connection test", s.timeout, s.repo.Ping)
	if err != nil {
		if isNotConfigured(err) {
			return nil, err
		}
		report.Connection.Message = err.Error()
		return report, nil
	}
	report.Connection.OK = true
	report.Connection.Message = "Database connection successful"
	healthy := true

	for _, table := range repositories.RequiredTables {
		check := models.TableCheck{Table: table}
		exists, err := s.repo.TableExists(ctx, table)
		if err != nil {
			check.Error = err.Error()
		}
		check.Exists = exists
		if !exists {
			healthy = false
		}
		report.Tables = append(report.Tables, check)
	}

	for _, table := range countedTables {
		n, err := s.repo.CountRows(ctx, table)
		if err != nil {
			healthy = false
			continue
		}
		report.Counts[table] = n
	}

	names := make([]string, 0, len(repositories.RelationshipProbes))
	for name := range repositories.RelationshipProbes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := models.CheckResult{Name: name}
		rows, err := s.repo.ProbeRelationship(ctx, name)
		if err != nil {
			healthy = false
			result.Message = err.Error()
		} else {
			result.OK = true
			result.Rows = rows
			result.Message = fmt.Sprintf("%d joined rows", rows)
		}
		report.Relationships = append(report.Relationships, result)
	}

	report.Healthy = healthy
	return report, nil
}
