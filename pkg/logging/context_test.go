package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tally/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
		//nolint:staticcheck // nil context is handled explicitly
		assert.Same(t, logging.Default(), logging.FromContext(nil))
	})

	t.Run("WithLogger with nil uses default", func(t *testing.T) {
		ctx := logging.WithLogger(context.Background(), nil)
		assert.Same(t, logging.Default(), logging.FromContext(ctx))
	})

	t.Run("WithRunID stores and tags run", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-1")

		assert.Equal(t, "run-1", logging.RunID(ctx))
		assert.Empty(t, logging.RunID(context.Background()))

		logging.FromContext(ctx).Info().Msg("tagged")
		entry, ok := tl.Find("tagged")
		require.True(t, ok)
		assert.Equal(t, "run-1", entry["run_id"])
	})

	t.Run("WithDataset and WithFile", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithDataset(ctx, "referendum")
		ctx = logging.WithFile(ctx, "data/referendum.csv")

		logging.FromContext(ctx).Info().Msg("loaded")
		entry, ok := tl.Find("loaded")
		require.True(t, ok)
		assert.Equal(t, "referendum", entry["dataset"])
		assert.Equal(t, "data/referendum.csv", entry["file"])
	})
}
