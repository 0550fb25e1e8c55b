package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepo_ListAppliesFiltersNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	providerID := uuid.New()
	status := models.TaskStatusPending
	task := &models.Task{
		ID:         uuid.New(),
		ProviderID: &providerID,
		Title:      "Collect DEA certificate",
		Status:     status,
		Priority:   models.TaskPriorityHigh,
		CreatedAt:  fixedTime,
		UpdatedAt:  fixedTime,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.provider_id = $1 AND t.status = $2 ORDER BY t.created_at DESC`)).
		WithArgs(providerID, status).
		WillReturnRows(taskRows(task))

	repo := NewTaskRepo(mock)
	tasks, err := repo.List(context.Background(), models.TaskFilters{ProviderID: &providerID, Status: &status}, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Collect DEA certificate", tasks[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_UpdateCompletion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	status := models.TaskStatusCompleted
	completedAt := time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)
	updated := &models.Task{
		ID: id, Title: "Primary source verification", Status: status, Priority: models.TaskPriorityMedium,
		CompletedAt: &completedAt, CreatedAt: fixedTime, UpdatedAt: completedAt,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tasks SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3 RETURNING *`)).
		WithArgs(status, completedAt, id).
		WillReturnRows(taskRows(updated))

	repo := NewTaskRepo(mock)
	got, err := repo.Update(context.Background(), id, &models.TaskPatch{Status: &status, CompletedAt: &completedAt}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completedAt.Equal(*got.CompletedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_UpdateLeavingCompletedClearsCompletedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	viewer := uuid.New()
	status := models.TaskStatusInProgress
	updated := &models.Task{
		ID: id, Title: "Primary source verification", Status: status, Priority: models.TaskPriorityMedium,
		CreatedAt: fixedTime, UpdatedAt: fixedTime,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tasks SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3 AND (provider_id IN`)).
		WithArgs(status, nil, id, viewer).
		WillReturnRows(taskRows(updated))

	repo := NewTaskRepo(mock)
	got, err := repo.Update(context.Background(), id, &models.TaskPatch{Status: &status, CompletedAt: &time.Time{}}, &viewer)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_UpdateInvisibleTaskIsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	viewer := uuid.New()
	title := "Renamed"

	mock.ExpectQuery(regexp.QuoteMeta(`OR assigned_to = $3) RETURNING *`)).
		WithArgs(title, id, viewer).
		WillReturnError(pgx.ErrNoRows)

	repo := NewTaskRepo(mock)
	_, err = repo.Update(context.Background(), id, &models.TaskPatch{Title: &title}, &viewer)
	qe, ok := common.AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, common.QueryKindNotFound, qe.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_CheckReferences(t *testing.T) {
	viewer := uuid.New()
	workflowID := uuid.New()
	providerID := uuid.New()

	t.Run("visible", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`EXISTS (SELECT 1 FROM workflows WHERE id = $1 AND organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $3))`)).
			WithArgs(&workflowID, &providerID, viewer).
			WillReturnRows(pgxmock.NewRows([]string{"workflow_ok", "provider_ok"}).AddRow(true, true))

		require.NoError(t, NewTaskRepo(mock).CheckReferences(context.Background(), viewer, &workflowID, &providerID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign provider", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM providers WHERE id = $2`)).
			WithArgs((*uuid.UUID)(nil), &providerID, viewer).
			WillReturnRows(pgxmock.NewRows([]string{"workflow_ok", "provider_ok"}).AddRow(true, false))

		err = NewTaskRepo(mock).CheckReferences(context.Background(), viewer, nil, &providerID)
		qe, ok := common.AsQueryError(err)
		require.True(t, ok)
		assert.Equal(t, common.QueryKindInvalid, qe.Kind)
		assert.Contains(t, qe.Error(), providerID.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
