package ports

import (
	"context"
	"testing"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDefinitionSourceContract verifies that a DefinitionSource yields a
// loadable definition equal to want, and yields it the same way every time.
func RunDefinitionSourceContract(t *testing.T, src DefinitionSource, want domain.GraphDefinition) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		def, err := src.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want.ID, def.ID)
		assert.Equal(t, want.StartNodeID, def.StartNodeID)
		assert.Equal(t, want.Nodes, def.Nodes)
		assert.Equal(t, want.Edges, def.Edges)

		_, err = graph.Load(def)
		assert.NoError(t, err, "definition should validate")
	})

	t.Run("Stable Order", func(t *testing.T) {
		first, err := src.Load(ctx)
		require.NoError(t, err)
		second, err := src.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := src.Load(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// RunExporterContract verifies that an Exporter accepts a summary and
// honours cancellation.
func RunExporterContract(t *testing.T, exp Exporter, doc domain.Summary) {
	ctx := context.Background()

	t.Run("Export", func(t *testing.T) {
		require.NoError(t, exp.Export(ctx, doc))
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, exp.Export(cctx, doc), context.Canceled)
	})
}
