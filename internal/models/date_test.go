package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09"`), &back))
	assert.Equal(t, d.String(), back.String())

	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09T00:00:00+00:00"`), &back))
	assert.Equal(t, "2025-03-09", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2025"`), &back))

	require.NoError(t, json.Unmarshal([]byte(`""`), &back))
	assert.True(t, back.IsZero())
}

func TestDate_Before(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	assert.True(t, d.Before(time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC)))
	assert.False(t, d.Before(time.Date(2025, time.March, 9, 23, 0, 0, 0, time.UTC)))
}

func TestProviderFromEmbeddedJSON(t *testing.T) {
	raw := `{"id":"5b8a6b4e-8f7a-4d55-9f43-0f6f0c1f7d11","organization_id":"0d7c1a52-0f61-4b1c-a6a8-6c1b1f0b9c2e",
		"location_id":null,"first_name":"Jane","last_name":"Doe","email":null,"phone":null,"specialty":"Cardiology",
		"license_number":"L-1","license_expiry":"2026-01-31","status":"active",
		"created_at":"2025-01-02T03:04:05.123456+00:00","updated_at":"2025-01-02T03:04:05.123456+00:00"}`

	var p Provider
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "Jane Doe", p.FullName())
	require.NotNil(t, p.LicenseExpiry)
	assert.Equal(t, "2026-01-31", p.LicenseExpiry.String())
	assert.Nil(t, p.LocationID)
}

func TestProviderPatch_Assignments(t *testing.T) {
	status := ProviderStatusActive
	none := uuid.Nil
	patch := &ProviderPatch{Status: &status, LocationID: &none}

	got := patch.Assignments()
	require.Len(t, got, 2)
	assert.Equal(t, "location_id", got[0].Column)
	assert.Nil(t, got[0].Value)
	assert.Equal(t, Assignment{"status", "active"}, got[1])

	assert.Empty(t, (&ProviderPatch{}).Assignments())
}

func TestProviderPatch_BlankValuesClear(t *testing.T) {
	empty := ""
	got := (&ProviderPatch{Email: &empty, LicenseNumber: &empty, LicenseExpiry: &Date{}}).Assignments()

	require.Len(t, got, 3)
	assert.Equal(t, Assignment{"email", nil}, got[0])
	assert.Equal(t, Assignment{"license_number", nil}, got[1])
	assert.Equal(t, Assignment{"license_expiry", nil}, got[2])
}

func TestTaskPatch_ZeroCompletedAtClears(t *testing.T) {
	status := "in_progress"
	got := (&TaskPatch{Status: &status, CompletedAt: &time.Time{}}).Assignments()

	require.Len(t, got, 2)
	assert.Equal(t, Assignment{"status", "in_progress"}, got[0])
	assert.Equal(t, Assignment{"completed_at", nil}, got[1])
}

func TestTaskPatch_Assignments(t *testing.T) {
	title := "Verify license"
	none := uuid.Nil
	got := (&TaskPatch{Title: &title, AssignedTo: &none}).Assignments()

	require.Len(t, got, 2)
	assert.Equal(t, Assignment{"title", "Verify license"}, got[0])
	assert.Equal(t, "assigned_to", got[1].Column)
	assert.Nil(t, got[1].Value)
}
