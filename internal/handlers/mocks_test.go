package handlers

import (
	"context"
	"time"

	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProviderService struct {
	mock.Mock
}

func (m *MockProviderService) List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Provider, error) {
	args := m.Called(ctx, viewerID, organizationID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProviderService) Create(ctx context.Context, actorID *uuid.UUID, req *services.CreateProviderRequest) (*models.Provider, error) {
	args := m.Called(ctx, actorID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProviderService) Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *services.UpdateProviderRequest) (*models.Provider, error) {
	args := m.Called(ctx, actorID, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, viewerID *uuid.UUID, filters models.TaskFilters) ([]*models.Task, error) {
	args := m.Called(ctx, viewerID, filters)
	if v := args.Get(0); v != nil {
		return v.([]*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, actorID *uuid.UUID, req *services.CreateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, actorID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *services.UpdateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, actorID, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, req *services.SignUpRequest) (*services.SignUpResult, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*services.SignUpResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *MockAuthService) GetSession(ctx context.Context, accessToken string) (*models.Session, error) {
	args := m.Called(ctx, accessToken)
	if v := args.Get(0); v != nil {
		return v.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Subscribe(fn func(models.SessionEvent)) func() {
	return func() {}
}

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) Run(ctx context.Context, organizationID *uuid.UUID, asOf time.Time) (*models.ComplianceResult, error) {
	args := m.Called(ctx, organizationID, asOf)
	if v := args.Get(0); v != nil {
		return v.(*models.ComplianceResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockComplianceQueue struct {
	mock.Mock
}

func (m *MockComplianceQueue) EnqueueComplianceCheck(ctx context.Context, organizationID *uuid.UUID) (string, error) {
	args := m.Called(ctx, organizationID)
	return args.String(0), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context, viewerID, organizationID *uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, viewerID, organizationID)
	if v := args.Get(0); v != nil {
		return v.(*models.DashboardStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, actorID *uuid.UUID, req *services.UploadDocumentRequest) (*models.ProviderDocument, error) {
	args := m.Called(ctx, actorID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.ProviderDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, viewerID *uuid.UUID, providerID uuid.UUID) ([]*models.ProviderDocument, error) {
	args := m.Called(ctx, viewerID, providerID)
	if v := args.Get(0); v != nil {
		return v.([]*models.ProviderDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubOrgChecker struct {
	has bool
	err error
}

func (s stubOrgChecker) HasUserOrganizations(context.Context, *uuid.UUID) (bool, error) {
	return s.has, s.err
}
