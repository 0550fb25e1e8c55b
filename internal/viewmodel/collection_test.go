package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uuid.UUID
	Name string
}

func itemID(i item) uuid.UUID { return i.ID }

func TestCollection_LoadReplacesItems(t *testing.T) {
	ctx := context.Background()
	first := []item{{ID: uuid.New(), Name: "a"}, {ID: uuid.New(), Name: "b"}}
	c := NewCollection[item, string](func(context.Context, string) ([]item, error) { return first, nil }, itemID, "")

	before := c.Snapshot()
	assert.Empty(t, before.Items)
	assert.False(t, before.Loading)

	require.NoError(t, c.Load(ctx))

	snap := c.Snapshot()
	assert.Equal(t, first, snap.Items)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
}

func TestCollection_FailedLoadKeepsItems(t *testing.T) {
	ctx := context.Background()
	items := []item{{ID: uuid.New(), Name: "a"}}
	fail := false
	c := NewCollection[item, string](func(context.Context, string) ([]item, error) {
		if fail {
			return nil, errors.New("relation \"providers\" does not exist")
		}
		return items, nil
	}, itemID, "")
	require.NoError(t, c.Load(ctx))

	fail = true
	assert.Error(t, c.Refetch(ctx))

	snap := c.Snapshot()
	assert.Equal(t, items, snap.Items)
	assert.Equal(t, "relation \"providers\" does not exist", snap.Err)

	fail = false
	require.NoError(t, c.Refetch(ctx))
	assert.Empty(t, c.Snapshot().Err)
}

func TestCollection_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	c := NewCollection[item, string](func(_ context.Context, filter string) ([]item, error) {
		if filter == "slow" {
			close(started)
			<-release
		}
		return []item{{ID: uuid.New(), Name: filter}}, nil
	}, itemID, "slow")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Load(ctx))
	}()
	<-started

	require.NoError(t, c.SetFilter(ctx, "fast"))
	close(release)
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "fast", snap.Items[0].Name)
	assert.False(t, snap.Loading)
	assert.Equal(t, "fast", c.Filter())
}

func TestCollection_LoadingWhileInFlight(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	c := NewCollection[item, string](func(context.Context, string) ([]item, error) {
		close(started)
		<-release
		return nil, nil
	}, itemID, "")

	done := make(chan error)
	go func() { done <- c.Load(ctx) }()
	<-started
	assert.True(t, c.Snapshot().Loading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Snapshot().Loading)
	assert.NotNil(t, c.Snapshot().Items)
}

func TestCollection_CreateAppendsAndUpdateReplaces(t *testing.T) {
	ctx := context.Background()
	a := item{ID: uuid.New(), Name: "a"}
	b := item{ID: uuid.New(), Name: "b"}
	c := NewCollection[item, string](func(context.Context, string) ([]item, error) { return []item{b, a}, nil }, itemID, "")
	require.NoError(t, c.Load(ctx))

	created := item{ID: uuid.New(), Name: "0"}
	_, err := c.Create(ctx, func(context.Context) (item, error) { return created, nil })
	require.NoError(t, err)
	assert.Equal(t, []item{b, a, created}, c.Items())

	renamed := item{ID: a.ID, Name: "a2"}
	_, err = c.Update(ctx, a.ID, func(context.Context) (item, error) { return renamed, nil })
	require.NoError(t, err)
	assert.Equal(t, []item{b, renamed, created}, c.Items())
}

func TestCollection_WriteFailureSetsError(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item, string](func(context.Context, string) ([]item, error) { return nil, nil }, itemID, "")

	_, err := c.Create(ctx, func(context.Context) (item, error) { return item{}, errors.New("duplicate key") })

	assert.EqualError(t, err, "duplicate key")
	assert.Equal(t, "duplicate key", c.Snapshot().Err)
	assert.Empty(t, c.Items())

	_, err = c.Update(ctx, uuid.New(), func(context.Context) (item, error) { return item{}, errors.New("no rows") })
	assert.Error(t, err)
	assert.Equal(t, "no rows", c.Snapshot().Err)
}

type fakeDashboard struct {
	stats  *models.DashboardStats
	err    error
	viewer *uuid.UUID
}

func (f *fakeDashboard) Stats(_ context.Context, viewerID, _ *uuid.UUID) (*models.DashboardStats, error) {
	f.viewer = viewerID
	return f.stats, f.err
}

func TestStatsView(t *testing.T) {
	ctx := context.Background()
	svc := &fakeDashboard{stats: &models.DashboardStats{TotalProviders: 2, ActiveWorkflows: 1, CompletedTasks: 3, PendingTasks: 4}}
	viewer := uuid.New()
	view := NewStatsView(svc, &viewer, nil)

	assert.Equal(t, models.DashboardStats{}, view.Snapshot().Stats)

	require.NoError(t, view.Refetch(ctx))
	assert.Equal(t, &viewer, svc.viewer)
	assert.Equal(t, int64(4), view.Snapshot().Stats.PendingTasks)

	svc.err = errors.New("timeout")
	assert.Error(t, view.Refetch(ctx))
	snap := view.Snapshot()
	assert.Equal(t, "timeout", snap.Err)
	assert.Equal(t, int64(2), snap.Stats.TotalProviders)
}
