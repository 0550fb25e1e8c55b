package repositories_test

import (
	"context"
	"testing"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"
	"credhub/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRepo_Integration(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()

	userID := testhelpers.SetupTestUser(t, db)
	orgID := testhelpers.SetupTestOrganization(t, db, userID, models.RoleAdmin)
	locationID := testhelpers.SetupTestLocation(t, db, orgID)
	repo := repositories.NewProviderRepo(db.Client)

	created, err := repo.Create(ctx, testhelpers.NewTestProvider(orgID, &locationID))
	require.NoError(t, err)
	require.NotNil(t, created.Organization)
	require.NotNil(t, created.Location)
	assert.Equal(t, "Test Location", created.Location.Name)

	t.Run("create then list contains the row once", func(t *testing.T) {
		providers, err := repo.List(ctx, models.Scope{OrganizationID: &orgID, ViewerID: &userID})
		require.NoError(t, err)

		count := 0
		for _, p := range providers {
			if p.ID == created.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("other viewers do not see the row", func(t *testing.T) {
		stranger := testhelpers.SetupTestUser(t, db)
		providers, err := repo.List(ctx, models.Scope{ViewerID: &stranger})
		require.NoError(t, err)
		for _, p := range providers {
			assert.NotEqual(t, created.ID, p.ID)
		}
	})

	t.Run("update touches only patched columns", func(t *testing.T) {
		status := models.ProviderStatusActive
		updated, err := repo.Update(ctx, created.ID, &models.ProviderPatch{Status: &status}, &userID)
		require.NoError(t, err)

		assert.Equal(t, models.ProviderStatusActive, updated.Status)
		assert.Equal(t, created.FirstName, updated.FirstName)
		assert.Equal(t, created.LastName, updated.LastName)
		assert.Equal(t, *created.LicenseNumber, *updated.LicenseNumber)
		assert.Equal(t, created.LocationID, updated.LocationID)
	})

	t.Run("other viewers cannot update the row", func(t *testing.T) {
		stranger := testhelpers.SetupTestUser(t, db)
		status := models.ProviderStatusSuspended
		_, err := repo.Update(ctx, created.ID, &models.ProviderPatch{Status: &status}, &stranger)
		assert.True(t, common.IsNotFound(err))
	})

	t.Run("location of another organization is rejected", func(t *testing.T) {
		otherUser := testhelpers.SetupTestUser(t, db)
		otherOrg := testhelpers.SetupTestOrganization(t, db, otherUser, models.RoleAdmin)
		foreignLocation := testhelpers.SetupTestLocation(t, db, otherOrg)

		_, err := repo.Create(ctx, testhelpers.NewTestProvider(orgID, &foreignLocation))
		qe, ok := common.AsQueryError(err)
		require.True(t, ok)
		assert.Equal(t, common.QueryKindInvalid, qe.Kind)
	})

	t.Run("unknown organization is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, testhelpers.NewTestProvider(uuid.New(), nil))
		require.Error(t, err)
		qe, ok := common.AsQueryError(err)
		require.True(t, ok)
		assert.Equal(t, common.QueryKindInvalid, qe.Kind)
	})
}

func TestMembershipRepo_Integration(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	repo := repositories.NewMembershipRepo(db.Client)

	userID := testhelpers.SetupTestUser(t, db)
	exists, err := repo.ExistsForUser(ctx, userID)
	require.NoError(t, err)
	assert.False(t, exists)

	orgID := testhelpers.SetupTestOrganization(t, db, userID, models.RoleManager)
	exists, err = repo.ExistsForUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	m, err := repo.Get(ctx, userID, orgID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, m.Role)
}
