package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cecat/soundviz/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	span := model.TimeSpan{
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC),
	}
	id, err := store.SaveRun(ctx, model.RunSummary{
		CreatedAt:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		LogPath:     "./logs/log.csv",
		ReportPath:  "./plots/Sound_viz.pdf",
		Span:        span,
		GroupCounts: map[string]int{"birds": 12, "people": 3},
		TotalRows:   20,
		ValidRows:   15,
		InvalidRows: 5,
		Batches:     4,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "./logs/log.csv", run.LogPath)
	assert.Equal(t, "./plots/Sound_viz.pdf", run.ReportPath)
	assert.Equal(t, 20, run.TotalRows)
	assert.Equal(t, 15, run.ValidRows)
	assert.Equal(t, 5, run.InvalidRows)
	assert.Equal(t, 4, run.Batches)
	assert.Equal(t, map[string]int{"birds": 12, "people": 3}, run.GroupCounts)
	assert.True(t, span.Start.Equal(run.Span.Start))
	assert.True(t, span.End.Equal(run.Span.End))
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := store.SaveRun(ctx, model.RunSummary{
			CreatedAt:   time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC),
			LogPath:     "log.csv",
			GroupCounts: map[string]int{},
			TotalRows:   day,
			ValidRows:   day,
		})
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].TotalRows)
	assert.Equal(t, 2, runs[1].TotalRows)
}

func TestSaveRunWithoutSpan(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SaveRun(ctx, model.RunSummary{
		LogPath:     "log.csv",
		GroupCounts: map[string]int{},
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Span.IsZero())
	assert.False(t, runs[0].CreatedAt.IsZero(), "zero CreatedAt defaults to now")
}

func TestNewSQLiteStorageCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}
