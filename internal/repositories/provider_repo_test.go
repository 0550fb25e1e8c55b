package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProviderRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo ProviderRepository
	org  *models.Organization
	ctx  context.Context
}

func (suite *ProviderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewProviderRepo(mock)
	suite.org = newOrganization("Riverside Health")
	suite.ctx = context.Background()
}

func (suite *ProviderRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProviderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRepoTestSuite))
}

func (suite *ProviderRepoTestSuite) TestList_FiltersByOrganizationAndOrdersByLastName() {
	jane := newProvider(suite.org, "Jane", "Alvarez")
	sam := newProvider(suite.org, "Sam", "Brooks")

	suite.mock.ExpectQuery(`FROM providers p .* WHERE p\.organization_id = \$1 ORDER BY p\.last_name ASC`).
		WithArgs(suite.org.ID).
		WillReturnRows(providerRows(jane, sam))

	providers, err := suite.repo.List(suite.ctx, models.Scope{OrganizationID: &suite.org.ID})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), providers, 2)
	assert.Equal(suite.T(), "Alvarez", providers[0].LastName)
	assert.Equal(suite.T(), "Riverside Health", providers[1].Organization.Name)
}

func (suite *ProviderRepoTestSuite) TestList_ViewerScope() {
	viewer := uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta(`p.organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $1)`)).
		WithArgs(viewer).
		WillReturnRows(providerRows())

	providers, err := suite.repo.List(suite.ctx, models.Scope{ViewerID: &viewer})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), providers)
	assert.Empty(suite.T(), providers)
}

func (suite *ProviderRepoTestSuite) TestList_BackendErrorBecomesQueryError() {
	suite.mock.ExpectQuery(`FROM providers p`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "providers" does not exist`})

	_, err := suite.repo.List(suite.ctx, models.Scope{})
	qe, ok := common.AsQueryError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), `relation "providers" does not exist`, qe.Message)
	assert.Equal(suite.T(), "list providers", qe.Op)
}

func (suite *ProviderRepoTestSuite) TestCreate_ReturnsJoinedRow() {
	expiry := models.NewDate(2026, time.June, 30)
	input := &models.Provider{
		OrganizationID: suite.org.ID,
		FirstName:      "Jane",
		LastName:       "Alvarez",
		Specialty:      stringPtr("Cardiology"),
		LicenseExpiry:  &expiry,
		Status:         models.ProviderStatusPending,
	}
	created := newProvider(suite.org, "Jane", "Alvarez")
	created.Specialty = input.Specialty
	created.LicenseExpiry = &expiry

	suite.mock.ExpectQuery(`INSERT INTO providers`).
		WithArgs(suite.org.ID, input.LocationID, "Jane", "Alvarez", input.Email, input.Phone,
			input.Specialty, input.LicenseNumber, input.LicenseExpiry, "pending").
		WillReturnRows(providerRows(created))

	got, err := suite.repo.Create(suite.ctx, input)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.ID, got.ID)
	assert.Equal(suite.T(), "2026-06-30", got.LicenseExpiry.String())
	assert.Equal(suite.T(), suite.org.ID, got.Organization.ID)
}

func (suite *ProviderRepoTestSuite) TestCreate_ConstraintViolation() {
	suite.mock.ExpectQuery(`INSERT INTO providers`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation, Message: `new row violates check constraint "providers_status_check"`})

	_, err := suite.repo.Create(suite.ctx, &models.Provider{OrganizationID: suite.org.ID, Status: "retired"})
	qe, ok := common.AsQueryError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), common.QueryKindInvalid, qe.Kind)
	assert.Equal(suite.T(), pgerrcode.CheckViolation, qe.Code)
}

func (suite *ProviderRepoTestSuite) TestUpdate_TouchesOnlyPatchedColumns() {
	existing := newProvider(suite.org, "Jane", "Alvarez")
	existing.Status = models.ProviderStatusActive
	status := models.ProviderStatusActive

	suite.mock.ExpectQuery(regexp.QuoteMeta(`UPDATE providers SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *`)).
		WithArgs("active", existing.ID).
		WillReturnRows(providerRows(existing))

	got, err := suite.repo.Update(suite.ctx, existing.ID, &models.ProviderPatch{Status: &status}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "active", got.Status)
	assert.Equal(suite.T(), "Jane", got.FirstName)
}

func (suite *ProviderRepoTestSuite) TestUpdate_UnknownIDIsNotFound() {
	status := models.ProviderStatusSuspended
	id := uuid.New()

	suite.mock.ExpectQuery(`UPDATE providers SET status`).
		WithArgs("suspended", id).
		WillReturnRows(providerRows())

	_, err := suite.repo.Update(suite.ctx, id, &models.ProviderPatch{Status: &status}, nil)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *ProviderRepoTestSuite) TestUpdate_OutsideViewerOrganizationsIsNotFound() {
	status := models.ProviderStatusActive
	id, viewer := uuid.New(), uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $2 AND organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $3) RETURNING *`)).
		WithArgs("active", id, viewer).
		WillReturnRows(providerRows())

	_, err := suite.repo.Update(suite.ctx, id, &models.ProviderPatch{Status: &status}, &viewer)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *ProviderRepoTestSuite) TestGetByID_ViewerScope() {
	viewer := uuid.New()
	jane := newProvider(suite.org, "Jane", "Alvarez")

	suite.mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1 AND p.organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $2)`)).
		WithArgs(jane.ID, viewer).
		WillReturnRows(providerRows(jane))

	got, err := suite.repo.GetByID(suite.ctx, jane.ID, &viewer)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), jane.ID, got.ID)
}

func (suite *ProviderRepoTestSuite) TestListLicenseExpired() {
	asOf := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	lapsed := newProvider(suite.org, "Lee", "Chen")
	past := models.NewDate(2025, time.February, 1)
	lapsed.LicenseExpiry = &past

	suite.mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.license_expiry < $1::date AND p.status <> 'expired' AND p.organization_id = $2`)).
		WithArgs("2025-03-01", suite.org.ID).
		WillReturnRows(providerRows(lapsed))

	providers, err := suite.repo.ListLicenseExpired(suite.ctx, &suite.org.ID, asOf)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), providers, 1)
	assert.Equal(suite.T(), lapsed.ID, providers[0].ID)
}
