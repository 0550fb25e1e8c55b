package services

import (
	"context"
	"testing"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type TaskServiceTestSuite struct {
	suite.Suite
	taskRepo  *MockTaskRepository
	auditRepo *MockAuditLogsRepository
	cache     *MockCacheService
	service   *taskService
	ctx       context.Context
	now       time.Time
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.taskRepo = new(MockTaskRepository)
	suite.auditRepo = new(MockAuditLogsRepository)
	suite.cache = new(MockCacheService)
	suite.now = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	effects := NewWriteEffects(NewAuditLogsService(suite.auditRepo), suite.cache, zap.NewNop())
	suite.service = NewTaskService(suite.taskRepo, effects).(*taskService)
	suite.service.now = func() time.Time { return suite.now }
	suite.ctx = context.Background()
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	suite.taskRepo.AssertExpectations(suite.T())
	suite.auditRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestCreate_Defaults() {
	providerID := uuid.New()
	orgID := uuid.New()
	suite.taskRepo.On("Create", suite.ctx, mock.MatchedBy(func(t *models.Task) bool {
		return t.Title == "Verify DEA" &&
			t.Status == models.TaskStatusPending &&
			t.Priority == models.TaskPriorityMedium &&
			t.ProviderID != nil && *t.ProviderID == providerID &&
			t.WorkflowID == nil &&
			t.CompletedAt == nil
	})).Return(&models.Task{
		ID:         uuid.New(),
		ProviderID: &providerID,
		Title:      "Verify DEA",
		Provider:   &models.Provider{ID: providerID, OrganizationID: orgID},
	}, nil)
	suite.auditRepo.On("Create", suite.ctx, mock.MatchedBy(func(log *models.AuditLog) bool {
		_, embedded := log.NewValues["provider"]
		return log.OrganizationID == orgID && log.TableName == "tasks" && !embedded
	})).Return(nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	_, err := suite.service.Create(suite.ctx, nil, &CreateTaskRequest{Title: " Verify DEA ", ProviderID: providerID.String()})
	suite.NoError(err)
}

func (suite *TaskServiceTestSuite) TestCreate_WithoutOrganizationOnlyInvalidates() {
	suite.taskRepo.On("Create", suite.ctx, mock.Anything).Return(&models.Task{ID: uuid.New(), Title: "Loose"}, nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	_, err := suite.service.Create(suite.ctx, nil, &CreateTaskRequest{Title: "Loose"})

	suite.NoError(err)
	suite.auditRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestCreate_InvalidPriority() {
	_, err := suite.service.Create(suite.ctx, nil, &CreateTaskRequest{Title: "x", Priority: "critical"})

	suite.True(common.IsValidationError(err))
	suite.taskRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestUpdate_CompletedStampsCompletion() {
	id := uuid.New()
	completed := models.TaskStatusCompleted
	suite.taskRepo.On("Update", suite.ctx, id, mock.MatchedBy(func(p *models.TaskPatch) bool {
		return p.Status != nil && *p.Status == completed &&
			p.CompletedAt != nil && p.CompletedAt.Equal(suite.now)
	}), (*uuid.UUID)(nil)).Return(&models.Task{ID: id, Status: completed, CompletedAt: &suite.now}, nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	task, err := suite.service.Update(suite.ctx, nil, id, &UpdateTaskRequest{Status: &completed})

	suite.NoError(err)
	suite.Equal(completed, task.Status)
}

func (suite *TaskServiceTestSuite) TestUpdate_EmptyReferenceClears() {
	id := uuid.New()
	none := ""
	suite.taskRepo.On("Update", suite.ctx, id, mock.MatchedBy(func(p *models.TaskPatch) bool {
		return p.WorkflowID != nil && *p.WorkflowID == uuid.Nil && p.CompletedAt == nil
	}), (*uuid.UUID)(nil)).Return(&models.Task{ID: id}, nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	_, err := suite.service.Update(suite.ctx, nil, id, &UpdateTaskRequest{WorkflowID: &none})
	suite.NoError(err)
}

func (suite *TaskServiceTestSuite) TestUpdate_LeavingCompletedClearsCompletedAt() {
	id := uuid.New()
	reopened := models.TaskStatusInProgress
	suite.taskRepo.On("Update", suite.ctx, id, mock.MatchedBy(func(p *models.TaskPatch) bool {
		return p.CompletedAt != nil && p.CompletedAt.IsZero() &&
			containsAssignment(p.Assignments(), models.Assignment{Column: "completed_at", Value: nil})
	}), (*uuid.UUID)(nil)).Return(&models.Task{ID: id, Status: reopened}, nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	task, err := suite.service.Update(suite.ctx, nil, id, &UpdateTaskRequest{Status: &reopened})

	suite.NoError(err)
	suite.Nil(task.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestUpdate_ScopedToActor() {
	id := uuid.New()
	actor := uuid.New()
	title := "Re-verify board certification"
	suite.taskRepo.On("Update", suite.ctx, id, mock.Anything, &actor).
		Return(nil, common.NewQueryError("update task", common.QueryKindNotFound, "no rows returned"))

	_, err := suite.service.Update(suite.ctx, &actor, id, &UpdateTaskRequest{Title: &title})

	suite.True(common.IsNotFound(err))
	suite.taskRepo.AssertNotCalled(suite.T(), "CheckReferences", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestUpdate_ForeignWorkflowRejected() {
	id := uuid.New()
	actor := uuid.New()
	workflowID := uuid.New()
	ref := workflowID.String()
	suite.taskRepo.On("CheckReferences", suite.ctx, actor, &workflowID, (*uuid.UUID)(nil)).
		Return(common.NewQueryError("check task references", common.QueryKindInvalid, "workflow %s is not in any of your organizations", ref))

	_, err := suite.service.Update(suite.ctx, &actor, id, &UpdateTaskRequest{WorkflowID: &ref})

	qe, ok := common.AsQueryError(err)
	suite.Require().True(ok)
	suite.Equal(common.QueryKindInvalid, qe.Kind)
	suite.taskRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestCreate_ForeignProviderRejected() {
	actor := uuid.New()
	providerID := uuid.New()
	suite.taskRepo.On("CheckReferences", suite.ctx, actor, (*uuid.UUID)(nil), &providerID).
		Return(common.NewQueryError("check task references", common.QueryKindInvalid, "provider %s is not in any of your organizations", providerID))

	_, err := suite.service.Create(suite.ctx, &actor, &CreateTaskRequest{Title: "Collect CV", ProviderID: providerID.String()})

	suite.Error(err)
	suite.taskRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestUpdate_NoFields() {
	_, err := suite.service.Update(suite.ctx, nil, uuid.New(), &UpdateTaskRequest{})

	var ve *common.ValidationError
	suite.Require().ErrorAs(err, &ve)
	suite.Contains(ve.Fields, "body")
}

func (suite *TaskServiceTestSuite) TestList_PassesFilters() {
	viewer := uuid.New()
	status := models.TaskStatusPending
	filters := models.TaskFilters{Status: &status}
	tasks := []*models.Task{{ID: uuid.New(), Status: status}}
	suite.taskRepo.On("List", suite.ctx, filters, &viewer).Return(tasks, nil)

	got, err := suite.service.List(suite.ctx, &viewer, filters)

	suite.NoError(err)
	suite.Equal(tasks, got)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func containsAssignment(set []models.Assignment, want models.Assignment) bool {
	for _, a := range set {
		if a == want {
			return true
		}
	}
	return false
}
