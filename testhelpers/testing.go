package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"credhub/internal/models"
	"credhub/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Client  *database.Client
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewClient(ctx, database.Options{URL: connString, Schema: os.Getenv("TEST_DB_SCHEMA")}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		client.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}

	db := &TestDB{Client: client, Cleanup: client.Close}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestUser creates a user with a unique email.
func SetupTestUser(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	email := "user-" + uuid.NewString() + "@credhub.test"
	err := db.Client.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, "not-a-real-hash").Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// SetupTestOrganization creates an organization and makes userID a member
// with the given role.
func SetupTestOrganization(t *testing.T, db *TestDB, userID uuid.UUID, role string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var orgID uuid.UUID
	if err := db.Client.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id`,
		"Test Organization "+uuid.NewString()[:8]).Scan(&orgID); err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}
	if _, err := db.Client.Exec(ctx,
		`INSERT INTO org_members (user_id, organization_id, role) VALUES ($1, $2, $3)`,
		userID, orgID, role); err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}
	return orgID
}

// SetupTestLocation creates an active location with one department.
func SetupTestLocation(t *testing.T, db *TestDB, orgID uuid.UUID) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.Client.QueryRow(context.Background(),
		`INSERT INTO locations (organization_id, name, departments, status) VALUES ($1, $2, 1, 'active') RETURNING id`,
		orgID, "Test Location").Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test location: %v", err)
	}
	return id
}

// NewTestProvider returns an unsaved pending provider.
func NewTestProvider(orgID uuid.UUID, locationID *uuid.UUID) *models.Provider {
	specialty := "Cardiology"
	license := "LIC-" + uuid.NewString()[:8]
	expiry := models.NewDate(time.Now().Year()+1, time.January, 31)

	return &models.Provider{
		OrganizationID: orgID,
		LocationID:     locationID,
		FirstName:      "Test",
		LastName:       "Provider",
		Specialty:      &specialty,
		LicenseNumber:  &license,
		LicenseExpiry:  &expiry,
		Status:         models.ProviderStatusPending,
	}
}
