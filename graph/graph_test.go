package graph

import (
	"context"
	"testing"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ids = []references.DocumentID

func discoverFrom(refs map[references.DocumentID]ids) Discoverer {
	return func(_ context.Context, id references.DocumentID) ([]references.DocumentID, error) {
		targets, ok := refs[id]
		if !ok {
			return nil, errors.ErrSourceNotFound.Wrapf("%s", id)
		}
		return targets, nil
	}
}

func build(t *testing.T, refs map[references.DocumentID]ids, root references.DocumentID, maxDepth int) *Graph {
	t.Helper()
	g, err := NewBuilder(discoverFrom(refs), maxDepth).Build(context.Background(), root)
	require.NoError(t, err)
	return g
}

func TestBuilder_Build_Diamond_Success(t *testing.T) {
	t.Parallel()

	g := build(t, map[references.DocumentID]ids{
		"root":  {"left", "right"},
		"left":  {"base"},
		"right": {"base"},
		"base":  nil,
	}, "root", 0)

	assert.Equal(t, ids{"root", "left", "right", "base"}, g.Nodes())
	assert.Equal(t, ids{"base"}, g.Dependencies("left"))
	assert.Equal(t, []Edge{{"root", "left"}, {"root", "right"}, {"left", "base"}, {"right", "base"}}, g.Edges())
	assert.Empty(t, g.BackEdges())
	assert.Empty(t, DetectCycles(g))
	assert.Equal(t, ids{"base", "left", "right", "root"}, LoadOrder(g, "root"))
}

func TestBuilder_Build_DuplicateReferences_CollapseEdges(t *testing.T) {
	t.Parallel()

	g := build(t, map[references.DocumentID]ids{
		"root":   {"common", "common", "other"},
		"common": nil,
		"other":  {"common"},
	}, "root", 0)

	assert.Equal(t, ids{"common", "other"}, g.Dependencies("root"), "should keep one edge per target")
	assert.Equal(t, 3, g.Len())
}

func TestBuilder_Build_Cycle_RecordsBackEdge(t *testing.T) {
	t.Parallel()

	g := build(t, map[references.DocumentID]ids{
		"A": {"B"},
		"B": {"A"},
	}, "A", 0)

	assert.Equal(t, []Edge{{From: "B", To: "A"}}, g.BackEdges())

	cycles := DetectCycles(g)
	require.Len(t, cycles, 1, "should report the cycle exactly once")
	assert.Equal(t, Cycle{"A", "B", "A"}, cycles[0])
	assert.Equal(t, "A -> B -> A", cycles[0].String())

	assert.Equal(t, ids{"B", "A"}, LoadOrder(g, "A"))
}

func TestBuilder_Build_SelfReference(t *testing.T) {
	t.Parallel()

	g := build(t, map[references.DocumentID]ids{"A": {"A"}}, "A", 0)

	assert.Equal(t, []Cycle{{"A", "A"}}, DetectCycles(g))
	assert.Equal(t, ids{"A"}, LoadOrder(g, "A"))
}

func TestBuilder_Build_MaxDepth_Error(t *testing.T) {
	t.Parallel()

	refs := map[references.DocumentID]ids{
		"a": {"b"},
		"b": {"c"},
		"c": {"d"},
		"d": nil,
	}

	_, err := NewBuilder(discoverFrom(refs), 2).Build(context.Background(), "a")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrMaxDepthExceeded)

	var depthErr *MaxDepthError
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, ids{"a", "b", "c", "d"}, depthErr.Chain, "should name the chain from the root to the offender")
	assert.Equal(t, "max dependency depth exceeded -- limit 2: a -> b -> c -> d", err.Error())

	_, err = NewBuilder(discoverFrom(refs), 3).Build(context.Background(), "a")
	assert.NoError(t, err, "should allow a chain exactly at the limit")
}

func TestBuilder_Build_DiscoverError(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(discoverFrom(map[references.DocumentID]ids{"a": {"missing"}}), 0).Build(context.Background(), "a")
	require.ErrorIs(t, err, errors.ErrSourceNotFound)
}

func TestBuilder_Build_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(discoverFrom(map[references.DocumentID]ids{"a": nil}), 0).Build(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetectCycles_OnePerEntryPoint(t *testing.T) {
	t.Parallel()

	g := New("root")
	g.AddEdge("root", "x")
	g.AddEdge("x", "y")
	g.AddEdge("y", "x")
	g.AddEdge("y", "root")
	g.AddNode("island")
	g.AddEdge("island", "loop")
	g.AddEdge("loop", "island")

	cycles := DetectCycles(g)
	assert.Equal(t, []Cycle{{"x", "y", "x"}, {"island", "loop", "island"}}, cycles)

	again := DetectCycles(g)
	assert.Equal(t, cycles, again, "should be deterministic")
}

func TestLoadOrder_Deterministic(t *testing.T) {
	t.Parallel()

	refs := map[references.DocumentID]ids{
		"root":   {"b", "a", "c"},
		"a":      {"shared"},
		"b":      {"shared", "a"},
		"c":      nil,
		"shared": nil,
	}

	first := LoadOrder(build(t, refs, "root", 0), "root")
	for range 10 {
		assert.Equal(t, first, LoadOrder(build(t, refs, "root", 0), "root"), "should produce the same order every time")
	}
	assert.Equal(t, ids{"shared", "a", "b", "c", "root"}, first)
}

func TestLoadOrder_RootMovedLast(t *testing.T) {
	t.Parallel()

	g := New("root")
	g.AddNode("root")
	g.AddEdge("extra", "dep")

	assert.Equal(t, ids{"dep", "extra", "root"}, LoadOrder(g, "root"))
}

func TestCycleError_Error(t *testing.T) {
	t.Parallel()

	err := error(&CycleError{Cycles: []Cycle{{"A", "B", "A"}}})
	assert.ErrorIs(t, err, errors.ErrCircularDependency)
	assert.Equal(t, "circular dependency -- [A -> B -> A]", err.Error())
}
