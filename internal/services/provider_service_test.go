package services

import (
	"context"
	"testing"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ProviderServiceTestSuite struct {
	suite.Suite
	providerRepo *MockProviderRepository
	memberRepo   *MockMembershipRepository
	auditRepo    *MockAuditLogsRepository
	cache        *MockCacheService
	service      ProviderService
	ctx          context.Context
	userID       uuid.UUID
	orgID        uuid.UUID
}

func (suite *ProviderServiceTestSuite) SetupTest() {
	suite.providerRepo = new(MockProviderRepository)
	suite.memberRepo = new(MockMembershipRepository)
	suite.auditRepo = new(MockAuditLogsRepository)
	suite.cache = new(MockCacheService)

	orgs := NewOrganizationService(new(MockOrganizationRepository), suite.memberRepo, nil, zap.NewNop())
	effects := NewWriteEffects(NewAuditLogsService(suite.auditRepo), suite.cache, zap.NewNop())
	suite.service = NewProviderService(suite.providerRepo, orgs, effects)
	suite.ctx = context.Background()
	suite.userID = uuid.New()
	suite.orgID = uuid.New()
}

func (suite *ProviderServiceTestSuite) TearDownTest() {
	suite.providerRepo.AssertExpectations(suite.T())
	suite.memberRepo.AssertExpectations(suite.T())
	suite.auditRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func (suite *ProviderServiceTestSuite) TestCreate_ResolvesPlaceholderOrganization() {
	suite.memberRepo.On("FirstForUser", suite.ctx, suite.userID).
		Return(&models.Membership{UserID: suite.userID, OrganizationID: suite.orgID}, nil)

	created := &models.Provider{ID: uuid.New(), OrganizationID: suite.orgID, FirstName: "Jane", LastName: "Doe", Status: models.ProviderStatusPending}
	suite.providerRepo.On("Create", suite.ctx, mock.MatchedBy(func(p *models.Provider) bool {
		return p.OrganizationID == suite.orgID &&
			p.FirstName == "Jane" &&
			p.Status == models.ProviderStatusPending &&
			p.LocationID == nil
	})).Return(created, nil)
	suite.auditRepo.On("Create", suite.ctx, mock.MatchedBy(func(log *models.AuditLog) bool {
		return log.TableName == "providers" && log.Action == models.ActionInsert && log.RecordID == created.ID.String()
	})).Return(nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	provider, err := suite.service.Create(suite.ctx, &suite.userID, &CreateProviderRequest{
		OrganizationID: common.PlaceholderOrganizationID,
		FirstName:      " Jane ",
		LastName:       "Doe",
	})

	suite.NoError(err)
	suite.Equal(created, provider)
}

func (suite *ProviderServiceTestSuite) TestCreate_UnresolvableOrganizationSkipsInsert() {
	suite.memberRepo.On("FirstForUser", suite.ctx, suite.userID).
		Return(nil, common.NewQueryError("first membership", common.QueryKindNotFound, "no rows"))

	_, err := suite.service.Create(suite.ctx, &suite.userID, &CreateProviderRequest{FirstName: "Jane", LastName: "Doe"})

	qe, ok := common.AsQueryError(err)
	suite.Require().True(ok)
	suite.Equal(common.QueryKindInvalid, qe.Kind)
	suite.providerRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ProviderServiceTestSuite) TestCreate_AuditFailureDoesNotFailWrite() {
	suite.memberRepo.On("Get", suite.ctx, suite.userID, suite.orgID).
		Return(&models.Membership{UserID: suite.userID, OrganizationID: suite.orgID}, nil)
	created := &models.Provider{ID: uuid.New(), OrganizationID: suite.orgID, FirstName: "Jane", LastName: "Doe"}
	suite.providerRepo.On("Create", suite.ctx, mock.Anything).Return(created, nil)
	suite.auditRepo.On("Create", suite.ctx, mock.Anything).Return(common.ErrNotConfigured)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	provider, err := suite.service.Create(suite.ctx, &suite.userID, &CreateProviderRequest{
		OrganizationID: suite.orgID.String(),
		FirstName:      "Jane",
		LastName:       "Doe",
	})

	suite.NoError(err)
	suite.Equal(created.ID, provider.ID)
}

func (suite *ProviderServiceTestSuite) TestCreate_ForeignOrganizationForbidden() {
	foreign := uuid.New()
	suite.memberRepo.On("Get", suite.ctx, suite.userID, foreign).
		Return(nil, common.NewQueryError("get membership", common.QueryKindNotFound, "no rows returned"))

	_, err := suite.service.Create(suite.ctx, &suite.userID, &CreateProviderRequest{
		OrganizationID: foreign.String(),
		FirstName:      "Jane",
		LastName:       "Doe",
	})

	suite.ErrorIs(err, common.ErrForbidden)
	suite.providerRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ProviderServiceTestSuite) TestCreate_InvalidLocation() {
	_, err := suite.service.Create(suite.ctx, &suite.userID, &CreateProviderRequest{
		OrganizationID: suite.orgID.String(),
		LocationID:     "not-a-uuid",
		FirstName:      "Jane",
		LastName:       "Doe",
	})

	var ve *common.ValidationError
	suite.Require().ErrorAs(err, &ve)
	suite.Contains(ve.Fields, "location_id")
}

func (suite *ProviderServiceTestSuite) TestUpdate_EmptyPatchRejected() {
	_, err := suite.service.Update(suite.ctx, &suite.userID, uuid.New(), &UpdateProviderRequest{})

	var ve *common.ValidationError
	suite.Require().ErrorAs(err, &ve)
	suite.Contains(ve.Fields, "body")
	suite.providerRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProviderServiceTestSuite) TestUpdate_EmptyLocationClears() {
	id := uuid.New()
	none := ""
	suite.providerRepo.On("Update", suite.ctx, id, mock.MatchedBy(func(p *models.ProviderPatch) bool {
		return p.LocationID != nil && *p.LocationID == uuid.Nil && p.Status == nil
	}), &suite.userID).Return(&models.Provider{ID: id, OrganizationID: suite.orgID}, nil)
	suite.auditRepo.On("Create", suite.ctx, mock.MatchedBy(func(log *models.AuditLog) bool {
		return log.Action == models.ActionUpdate && log.OrganizationID == suite.orgID
	})).Return(nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	_, err := suite.service.Update(suite.ctx, &suite.userID, id, &UpdateProviderRequest{LocationID: &none})
	suite.NoError(err)
}

func (suite *ProviderServiceTestSuite) TestUpdate_BlankContactAndExpiryClear() {
	id := uuid.New()
	blank := ""
	suite.providerRepo.On("Update", suite.ctx, id, mock.MatchedBy(func(p *models.ProviderPatch) bool {
		set := p.Assignments()
		return len(set) == 2 &&
			set[0] == models.Assignment{Column: "email", Value: nil} &&
			set[1] == models.Assignment{Column: "license_expiry", Value: nil}
	}), &suite.userID).Return(&models.Provider{ID: id, OrganizationID: suite.orgID}, nil)
	suite.auditRepo.On("Create", suite.ctx, mock.Anything).Return(nil)
	suite.cache.On("InvalidateDashboardStats", suite.ctx).Return(nil)

	_, err := suite.service.Update(suite.ctx, &suite.userID, id, &UpdateProviderRequest{
		Email:         &blank,
		LicenseExpiry: &models.Date{},
	})
	suite.NoError(err)
}

func (suite *ProviderServiceTestSuite) TestUpdate_BlankNameRejected() {
	blank := "  "
	_, err := suite.service.Update(suite.ctx, &suite.userID, uuid.New(), &UpdateProviderRequest{FirstName: &blank})

	var ve *common.ValidationError
	suite.Require().ErrorAs(err, &ve)
	suite.Contains(ve.Fields, "first_name")
}

func (suite *ProviderServiceTestSuite) TestUpdate_NotFound() {
	id := uuid.New()
	status := models.ProviderStatusActive
	suite.providerRepo.On("Update", suite.ctx, id, mock.Anything, &suite.userID).
		Return(nil, common.NewQueryError("update provider", common.QueryKindNotFound, "no rows"))

	_, err := suite.service.Update(suite.ctx, &suite.userID, id, &UpdateProviderRequest{Status: &status})

	suite.True(common.IsNotFound(err))
	suite.cache.AssertNotCalled(suite.T(), "InvalidateDashboardStats", mock.Anything)
}

func (suite *ProviderServiceTestSuite) TestList_Unconfigured() {
	suite.providerRepo.On("List", suite.ctx, models.Scope{ViewerID: &suite.userID}).Return(nil, common.ErrNotConfigured)

	providers, err := suite.service.List(suite.ctx, &suite.userID, nil)

	suite.NoError(err)
	suite.NotNil(providers)
	suite.Empty(providers)
}

func TestProviderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderServiceTestSuite))
}
