package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-typed-pipeline/internal/store"
)

func newGraph(t *testing.T) (graph.Graph[string, string], store.CustomStore[string, string]) {
	t.Helper()

	s := store.NewMemoryStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.PreventCycles())
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddVertex(name))
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("a", "c"))

	return g, s
}

func TestMemoryStoreNeighbours(t *testing.T) {
	t.Parallel()

	_, s := newGraph(t)
	assert.ElementsMatch(t, []string{"a", "b"}, s.Predecessors("c"))
	assert.ElementsMatch(t, []string{"b", "c"}, s.Successors("a"))
	assert.Empty(t, s.Predecessors("a"))
	assert.Empty(t, s.Successors("missing"))
}

func TestMemoryStorePreventsCycles(t *testing.T) {
	t.Parallel()

	g, _ := newGraph(t)
	err := g.AddEdge("c", "a")
	assert.ErrorIs(t, err, graph.ErrEdgeCreatesCycle)

	err = g.AddEdge("b", "b")
	assert.ErrorIs(t, err, graph.ErrEdgeCreatesCycle)
}

func TestMemoryStoreUpdateVertex(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	require.NoError(t, s.UpdateVertex("a", graph.VertexAttribute("kind", "typed"), graph.VertexWeight(3)))

	_, properties, err := g.VertexWithProperties("a")
	require.NoError(t, err)
	assert.Equal(t, "typed", properties.Attributes["kind"])
	assert.Equal(t, 3, properties.Weight)

	assert.ErrorIs(t, s.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestMemoryStoreRemoveVertex(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("x", "x", graph.VertexProperties{}))
	assert.ErrorIs(t, s.AddVertex("x", "x", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.RemoveVertex("x"))
	assert.ErrorIs(t, s.RemoveVertex("x"), graph.ErrVertexNotFound)
}
