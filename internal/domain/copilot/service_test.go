package copilot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/memory"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
)

func newTestService(t *testing.T) (*Service, *session.State, *memory.Store) {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()

	store := memory.NewStore(filepath.Join(dir, "memory.json"), logger)
	search, err := memory.NewSearchIndex()
	require.NoError(t, err)

	bundlePath := filepath.Join(dir, "bundle.json")
	trainer := model.NewTrainer(bundlePath, store, logger)
	executor := NewExecutor(bundlePath, store, &fakeCharts{}, logger)

	state := session.NewState()
	return NewService(state, executor, trainer, store, search, logger), state, store
}

func TestService_Query(t *testing.T) {
	t.Run("requires a dataset", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Query(context.Background(), "summary")
		assert.ErrorIs(t, err, session.ErrNoDataset)
	})

	t.Run("executes matched intents and records insights", func(t *testing.T) {
		svc, state, store := newTestService(t)
		state.SetDataset("sales.csv", revenueTable())

		resp, err := svc.Query(context.Background(), "show me a summary")
		require.NoError(t, err)

		assert.True(t, resp.Matched)
		require.Len(t, resp.Results, 1)
		assert.Contains(t, resp.Results[0].Text, "Rows: 3")
		assert.Len(t, store.Load().Insights, 1)
	})

	t.Run("unmatched query returns help and records nothing", func(t *testing.T) {
		svc, state, store := newTestService(t)
		state.SetDataset("sales.csv", revenueTable())

		resp, err := svc.Query(context.Background(), "how is the weather")
		require.NoError(t, err)

		assert.False(t, resp.Matched)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, HelpText, resp.Results[0].Text)
		assert.Empty(t, store.Load().Insights)
	})
}

func TestService_TrainAndPredictFlow(t *testing.T) {
	svc, state, _ := newTestService(t)

	table := revenueTable()
	state.SetDataset("sales.csv", table)

	// Region one-hot dummies are the only predictors for this table.
	result, err := svc.Train(context.Background(), "Revenue", model.TrainingConfig{Epochs: 5, Clusters: 2}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.TopFeatures)

	resp, err := svc.Query(context.Background(), "predict revenue")
	require.NoError(t, err)
	require.True(t, resp.Matched)
	assert.Empty(t, resp.Results[0].Warning)
	assert.Contains(t, resp.Results[0].Text, "Predicted Revenue")
}

func TestService_Memory(t *testing.T) {
	svc, state, _ := newTestService(t)
	state.SetDataset("sales.csv", revenueTable())

	_, err := svc.Query(context.Background(), "summary")
	require.NoError(t, err)

	t.Run("lists all insights without a filter", func(t *testing.T) {
		entries, err := svc.Memory("", 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("full-text filter narrows the list", func(t *testing.T) {
		entries, err := svc.Memory("summary", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Dataset summary", entries[0].Title)

		entries, err = svc.Memory("zebra", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("clear wipes insights and the index", func(t *testing.T) {
		require.NoError(t, svc.ClearMemory())

		entries, err := svc.Memory("", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
